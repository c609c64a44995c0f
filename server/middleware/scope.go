package middleware

import (
	"context"
	"net/http"

	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/logger"
)

// Scoper opens and closes context-bound scopes. *di.Container implements it.
type Scoper interface {
	StartScope(ctx context.Context, kind di.ScopeKind) (context.Context, error)
	EndScope(ctx context.Context, kind di.ScopeKind) error
}

// RequestScope runs every request inside its own request scope. Request
// scoped beans resolved while handling the request are destroyed once the
// handler returns, even when it panics.
func RequestScope(s Scoper, log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := s.StartScope(r.Context(), di.ScopeRequest)
			if err != nil {
				writeError(w, err)
				return
			}
			defer func() {
				if err := s.EndScope(context.WithoutCancel(ctx), di.ScopeRequest); err != nil {
					log.WithContext(ctx).Error("request scope teardown failed", logger.ErrorFields("end_scope", err))
				}
			}()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
