// Package hello is a small shop application assembled from beans: members,
// discount policies, orders, a request-scoped logger behind a proxy, a
// network client with lifecycle hooks and the HTTP handler that uses them.
package hello

import (
	"context"

	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/hello/common"
	"github.com/kbukum/beankit/hello/counter"
	"github.com/kbukum/beankit/hello/discount"
	"github.com/kbukum/beankit/hello/member"
	"github.com/kbukum/beankit/hello/network"
	"github.com/kbukum/beankit/hello/order"
	"github.com/kbukum/beankit/hello/web"
	"github.com/kbukum/beankit/logger"
)

// Registrar is the part of the container Configure needs.
type Registrar interface {
	Register(def *di.Definition) error
}

// Definitions returns the hello bean definitions for cfg.
func Definitions(cfg Config, log *logger.Logger) []*di.Definition {
	fixOpts, rateOpts := []di.DefinitionOption{}, []di.DefinitionOption{}
	if cfg.Discount.Main == "fix" {
		fixOpts = append(fixOpts, di.WithTag(MainDiscountPolicy))
	} else {
		rateOpts = append(rateOpts, di.WithTag(MainDiscountPolicy))
	}

	return []*di.Definition{
		di.Define(MemberRepositoryID, func(context.Context, di.Args) (*member.MemoryRepository, error) {
			return member.NewMemoryRepository(), nil
		}),
		di.Define(MemberServiceID, func(_ context.Context, args di.Args) (*member.Service, error) {
			return member.NewService(di.Arg[member.Repository](args, 0)), nil
		}, di.DependsOn(di.Dep[member.Repository]())),

		di.Define(FixDiscountPolicyID, func(context.Context, di.Args) (*discount.FixPolicy, error) {
			return discount.NewFixPolicy(), nil
		}, fixOpts...),
		di.Define(RateDiscountPolicyID, func(context.Context, di.Args) (*discount.RatePolicy, error) {
			return discount.NewRatePolicy(), nil
		}, rateOpts...),
		di.Define(OrderServiceID, func(_ context.Context, args di.Args) (*order.Service, error) {
			return order.NewService(di.Arg[member.Repository](args, 0), di.Arg[discount.Policy](args, 1)), nil
		}, di.DependsOn(
			di.Dep[member.Repository](),
			di.Dep[discount.Policy](di.Tagged(MainDiscountPolicy)),
		)),

		di.Define(MyLoggerID, func(context.Context, di.Args) (common.RequestLogger, error) {
			return common.NewMyLogger(log.WithComponent("myLogger")), nil
		}, di.RequestScoped(), di.NoAutowire()),
		di.ProxyDefinition(RequestLoggerID, MyLoggerID, common.NewLoggerProxy),
		di.Define(LogDemoServiceID, func(_ context.Context, args di.Args) (*web.LogDemoService, error) {
			return web.NewLogDemoService(di.Arg[common.RequestLogger](args, 0)), nil
		}, di.DependsOn(di.Dep[common.RequestLogger]())),

		di.Define(NetworkClientID, func(context.Context, di.Args) (*network.Client, error) {
			return network.NewClient(cfg.Network.URL, log.WithComponent("network")), nil
		},
			di.OnPostConstruct(func(ctx context.Context, c *network.Client) error { return c.Connect(ctx) }),
			di.OnPreDestroy(func(ctx context.Context, c *network.Client) error { return c.Disconnect(ctx) }),
		),

		di.Define(CounterID, func(context.Context, di.Args) (*counter.Counter, error) {
			return &counter.Counter{}, nil
		}, di.Prototype()),
		di.ProviderDefinition[*counter.Counter](CounterProviderID),
		di.Define(CounterClientID, func(_ context.Context, args di.Args) (*counter.Client, error) {
			return counter.NewClient(di.Arg[*di.Provider[*counter.Counter]](args, 0)), nil
		}, di.DependsOn(di.Dep[*di.Provider[*counter.Counter]]())),

		di.Define(WebHandlerID, func(_ context.Context, args di.Args) (*web.Handler, error) {
			return web.NewHandler(
				di.Arg[*web.LogDemoService](args, 0),
				di.Arg[common.RequestLogger](args, 1),
				di.Arg[*member.Service](args, 2),
				di.Arg[*order.Service](args, 3),
				di.Arg[*counter.Client](args, 4),
			), nil
		}, di.DependsOn(
			di.Dep[*web.LogDemoService](),
			di.Dep[common.RequestLogger](),
			di.Dep[*member.Service](),
			di.Dep[*order.Service](),
			di.Dep[*counter.Client](),
		)),
	}
}

// Configure registers the hello beans with r.
func Configure(r Registrar, cfg Config, log *logger.Logger) error {
	for _, def := range Definitions(cfg, log) {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}
