package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/beankit/errors"
)

// Middleware wraps an http.Handler with additional behavior. The server
// applies its stack at the handler level, so it covers Gin routes and any
// handler mounted on the root mux.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// writeError writes err as a JSON error body with the status it carries.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.Wrap(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
