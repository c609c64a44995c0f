// Package discount holds the discount policies of the hello application.
package discount

import "github.com/kbukum/beankit/hello/member"

// Policy computes the discount for a member buying an item at price.
type Policy interface {
	Discount(m member.Member, price int) int
}

// FixPolicy takes a fixed amount off for VIP members.
type FixPolicy struct {
	Amount int
}

// NewFixPolicy returns a FixPolicy with the default amount of 1000.
func NewFixPolicy() *FixPolicy {
	return &FixPolicy{Amount: 1000}
}

func (p *FixPolicy) Discount(m member.Member, price int) int {
	if m.Grade != member.VIP {
		return 0
	}
	return min(p.Amount, price)
}

// RatePolicy takes a percentage off for VIP members.
type RatePolicy struct {
	Percent int
}

// NewRatePolicy returns a RatePolicy with the default rate of 10%.
func NewRatePolicy() *RatePolicy {
	return &RatePolicy{Percent: 10}
}

func (p *RatePolicy) Discount(m member.Member, price int) int {
	if m.Grade != member.VIP {
		return 0
	}
	return price * p.Percent / 100
}
