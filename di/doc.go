// Package di is a managed-object container: it registers bean definitions,
// resolves their constructor dependencies by type, and owns the lifetime of
// what it builds.
//
// # Registration
//
//	c := di.New()
//	c.MustRegister(
//	    di.Define("memberRepository", member.NewMemoryRepositoryBean),
//	    di.Define("memberService", member.NewServiceBean,
//	        di.DependsOn(di.Dep[member.Repository]())),
//	)
//
// # Scopes
//
// Singletons live as long as the container, prototypes are rebuilt on every
// resolve and belong to the caller, and request beans live in a scope
// carried by a context.Context:
//
//	err := c.WithinScope(ctx, di.ScopeRequest, func(ctx context.Context) error {
//	    l, err := di.Resolve[*common.MyLogger](ctx, c, "myLogger")
//	    ...
//	})
//
// A singleton reaches a request bean through a Proxy, which looks the
// target up in the caller's scope on every call.
//
// # Lifecycle
//
// Post-construct runs once before a bean is cached; pre-destroy runs once
// when its scope ends, newest bean first. Shutdown ends the container.
//
// All errors are *errors.AppError values matching the package sentinels:
//
//	if errors.Is(err, di.ErrNoActiveScope) { ... }
package di
