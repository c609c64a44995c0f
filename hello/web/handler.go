package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/hello/common"
	"github.com/kbukum/beankit/hello/counter"
	"github.com/kbukum/beankit/hello/member"
	"github.com/kbukum/beankit/hello/order"
	"github.com/kbukum/beankit/server"
)

// Handler serves the hello routes. It is a singleton bean; request state
// reaches it only through the request logger proxy and the request context.
type Handler struct {
	demo    *LogDemoService
	log     common.RequestLogger
	members *member.Service
	orders  *order.Service
	counter *counter.Client
}

// NewHandler creates a Handler.
func NewHandler(demo *LogDemoService, log common.RequestLogger, members *member.Service, orders *order.Service, counter *counter.Client) *Handler {
	return &Handler{demo: demo, log: log, members: members, orders: orders, counter: counter}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/log-demo", h.logDemo)
	r.POST("/members", h.join)
	r.GET("/members/:id", h.findMember)
	r.POST("/orders", h.createOrder)
	r.GET("/count", h.count)
}

func (h *Handler) logDemo(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.log.SetRequestURL(ctx, requestURL(c)); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.log.Log(ctx, "controller test"); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.demo.Logic(ctx, "testId"); err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.String(http.StatusOK, "OK")
}

func (h *Handler) join(c *gin.Context) {
	var m member.Member
	if err := c.ShouldBindJSON(&m); err != nil {
		server.RespondWithError(c, errors.Validation("invalid member").WithCause(err))
		return
	}
	if err := h.members.Join(c.Request.Context(), m); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, m)
}

func (h *Handler) findMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		server.RespondWithError(c, errors.InvalidInput("id", "must be an integer"))
		return
	}
	m, err := h.members.FindMember(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

type orderRequest struct {
	MemberID  int64  `json:"member_id" binding:"required,gt=0"`
	ItemName  string `json:"item_name" binding:"required"`
	ItemPrice int    `json:"item_price" binding:"required,gt=0"`
}

type orderResponse struct {
	order.Order
	FinalPrice int `json:"final_price"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("invalid order").WithCause(err))
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), req.MemberID, req.ItemName, req.ItemPrice)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, orderResponse{Order: o, FinalPrice: o.CalculatePrice()})
}

func (h *Handler) count(c *gin.Context) {
	n, err := h.counter.Logic(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"count": n})
}

func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
