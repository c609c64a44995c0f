package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Container configuration errors
const (
	// ErrCodeDuplicateDefinition indicates a bean id was registered twice.
	ErrCodeDuplicateDefinition ErrorCode = "DUPLICATE_DEFINITION"
	// ErrCodeInvalidDefinition indicates a bean definition is malformed.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"
	// ErrCodeRegistryFrozen indicates registration after the container started.
	ErrCodeRegistryFrozen ErrorCode = "REGISTRY_FROZEN"
	// ErrCodeUnknownScope indicates a scope kind the container does not manage.
	ErrCodeUnknownScope ErrorCode = "UNKNOWN_SCOPE"
)

// Container resolution errors
const (
	// ErrCodeNoSuchBean indicates no definition matches an id or dependency.
	ErrCodeNoSuchBean ErrorCode = "NO_SUCH_BEAN"
	// ErrCodeAmbiguousDependency indicates several candidates match and none is primary.
	ErrCodeAmbiguousDependency ErrorCode = "AMBIGUOUS_DEPENDENCY"
	// ErrCodeCircularDependency indicates a bean depends on itself transitively.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeTypeMismatch indicates a resolved bean is not of the requested type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeConstructionFailed indicates a constructor or post-construct hook failed.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

// Container lifecycle errors
const (
	// ErrCodeNoActiveScope indicates a scoped bean was requested outside its scope.
	ErrCodeNoActiveScope ErrorCode = "NO_ACTIVE_SCOPE"
	// ErrCodeScopeAlreadyActive indicates a scope of the same kind is already open.
	ErrCodeScopeAlreadyActive ErrorCode = "SCOPE_ALREADY_ACTIVE"
	// ErrCodeContainerClosed indicates the container has been shut down.
	ErrCodeContainerClosed ErrorCode = "CONTAINER_CLOSED"
	// ErrCodeDestroyFailed indicates one or more pre-destroy hooks failed.
	ErrCodeDestroyFailed ErrorCode = "DESTROY_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Container errors are configuration or usage errors and never retryable;
// retry policy belongs to the caller.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
