package hello

// Bean ids.
const (
	MemberRepositoryID   = "memberRepository"
	MemberServiceID      = "memberService"
	FixDiscountPolicyID  = "fixDiscountPolicy"
	RateDiscountPolicyID = "rateDiscountPolicy"
	OrderServiceID       = "orderService"
	MyLoggerID           = "myLogger"
	RequestLoggerID      = "requestLogger"
	LogDemoServiceID     = "logDemoService"
	NetworkClientID      = "networkClient"
	CounterID            = "counter"
	CounterProviderID    = "counterProvider"
	CounterClientID      = "counterClient"
	WebHandlerID         = "webHandler"
)

// MainDiscountPolicy tags the discount policy orders use.
const MainDiscountPolicy = "main"
