package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/validation"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestID makes sure every request carries a UUID request id. A client
// supplied id is kept when it is a valid UUID. The id is echoed on the
// response and stored in the request context for logging.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || validation.New().OptionalUUID("request_id", id).HasErrors() {
				id = uuid.NewString()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			ctx := logger.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
