package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponType is the kind of discount a coupon applies
type CouponType string

const (
	CouponPercent CouponType = "percent" // value is a percentage of the service price
	CouponAmount  CouponType = "amount"  // value is a fixed yen amount
)

// CouponScope restricts which reservations a coupon applies to
type CouponScope string

const (
	ScopeGlobal  CouponScope = "global"
	ScopeSalon   CouponScope = "salon"
	ScopeService CouponScope = "service"
)

// Coupon represents a discount coupon.
// Invariant: scope=salon requires SalonID, scope=service requires
// ServiceID, scope=global requires neither.
type Coupon struct {
	ID          int64
	Code        string // unique
	Name        string
	Description *string
	Type        CouponType
	Value       float64 // percent (e.g. 15.0) or yen amount
	Scope       CouponScope
	SalonID     *int64
	ServiceID   *int64
	UseLimit    *int64 // nil = unlimited redemptions
	StartsAt    *time.Time
	EndsAt      *time.Time
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CouponRedemption records one coupon applied to one reservation.
// At most one redemption exists per reservation.
type CouponRedemption struct {
	ID            int64
	CouponID      int64
	UserID        int64
	ReservationID int64
	UsedAt        time.Time
}

// InWindow reports whether the coupon validity window covers now.
// A nil bound is unbounded on that side.
func (c *Coupon) InWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// AppliesTo reports whether the coupon scope matches the given
// salon/service pair.
func (c *Coupon) AppliesTo(salonID, serviceID int64) bool {
	switch c.Scope {
	case ScopeGlobal:
		return true
	case ScopeSalon:
		return c.SalonID != nil && *c.SalonID == salonID
	case ScopeService:
		return c.ServiceID != nil && *c.ServiceID == serviceID
	default:
		return false
	}
}

// Discount returns the yen discount this coupon yields on the given
// price. Percent discounts are floored to the whole yen; the discount
// never exceeds the price, so the final amount is never negative.
func (c *Coupon) Discount(priceJPY int64) int64 {
	var discount int64

	switch c.Type {
	case CouponPercent:
		// decimal keeps 15.0% of 10000 exactly 1500 regardless of
		// float representation of Value
		d := decimal.NewFromInt(priceJPY).
			Mul(decimal.NewFromFloat(c.Value)).
			Div(decimal.NewFromInt(100)).
			Floor()
		discount = d.IntPart()
	case CouponAmount:
		discount = decimal.NewFromFloat(c.Value).Floor().IntPart()
	default:
		return 0
	}

	if discount < 0 {
		return 0
	}
	if discount > priceJPY {
		return priceJPY
	}
	return discount
}

// FinalAmount returns the price after applying the coupon, floored at zero
func (c *Coupon) FinalAmount(priceJPY int64) int64 {
	return priceJPY - c.Discount(priceJPY)
}
