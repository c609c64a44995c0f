package logger

// Field keys shared by the container, the HTTP stack and the demo beans.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldScopeID   = "scope_id"
	FieldBean      = "bean"
	FieldScope     = "scope"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a field map from alternating keys and values. Pairs with a
// non-string key and a trailing odd value are dropped.
//
//	log.Info("bean created", logger.Fields("bean", "memberService", "scope", "singleton"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}
