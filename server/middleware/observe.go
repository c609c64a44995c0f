package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/kbukum/beankit/observability"
)

// unmatchedRoute labels requests no router claimed, keeping the route label
// bounded.
const unmatchedRoute = "unmatched"

// Observe opens a server span and records request metrics for every request.
// The route label starts as "METHOD unmatched" until a router reports the
// template it matched through RouteTemplate. A nil metrics value records
// spans only.
func Observe(service string, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.Method + " " + unmatchedRoute
			oc := observability.NewOperationContext(service, route, r.Header.Get(HeaderRequestID), metrics)
			ctx, span := oc.Start(r.Context(), observability.SpanHTTPRequest)

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			var err error
			if sw.status >= http.StatusInternalServerError {
				err = fmt.Errorf("%s", http.StatusText(sw.status))
			}
			oc.End(ctx, span, strconv.Itoa(sw.status), err)
		})
	}
}

// RouteTemplate records the route pattern r matched, e.g. "/members/:id".
// It is a no-op outside Observe.
func RouteTemplate(r *http.Request, pattern string) {
	ctx := r.Context()
	if oc := observability.OperationContextFromContext(ctx); oc != nil {
		oc.SetRoute(ctx, r.Method+" "+pattern)
	}
}
