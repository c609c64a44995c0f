package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/logger"
)

// Recovery returns middleware that turns a handler panic into a 500 response
// and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithContext(r.Context()).Error("panic recovered", map[string]interface{}{
						"error":  fmt.Sprintf("%v", rec),
						"stack":  string(debug.Stack()),
						"path":   r.URL.Path,
						"method": r.Method,
					})
					writeError(w, apperrors.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
