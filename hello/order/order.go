// Package order places orders for members.
package order

import (
	"context"

	"github.com/kbukum/beankit/hello/discount"
	"github.com/kbukum/beankit/hello/member"
)

// Order is a placed order.
type Order struct {
	MemberID      int64  `json:"member_id"`
	ItemName      string `json:"item_name"`
	ItemPrice     int    `json:"item_price"`
	DiscountPrice int    `json:"discount_price"`
}

// CalculatePrice returns the price after the discount.
func (o Order) CalculatePrice() int {
	return o.ItemPrice - o.DiscountPrice
}

// Service creates orders, pricing them with the injected policy.
type Service struct {
	members member.Repository
	policy  discount.Policy
}

// NewService creates a Service.
func NewService(members member.Repository, policy discount.Policy) *Service {
	return &Service{members: members, policy: policy}
}

// CreateOrder prices an order for the member. The member must exist.
func (s *Service) CreateOrder(ctx context.Context, memberID int64, itemName string, itemPrice int) (Order, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return Order{}, err
	}
	return Order{
		MemberID:      memberID,
		ItemName:      itemName,
		ItemPrice:     itemPrice,
		DiscountPrice: s.policy.Discount(m, itemPrice),
	}, nil
}

// Repository returns the member repository the service reads from.
func (s *Service) Repository() member.Repository {
	return s.members
}

// Policy returns the discount policy in use.
func (s *Service) Policy() discount.Policy {
	return s.policy
}
