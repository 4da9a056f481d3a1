package models

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// ListCouponsRequest запрос на получение списка купонов.
// Если указаны салон и услуга, список сужается до применимых к этой паре.
type ListCouponsRequest struct {
	SalonID   *int64 `json:"salonId,omitempty"`
	ServiceID *int64 `json:"serviceId,omitempty"`
}

// CouponResponse ответ с данными купона
type CouponResponse struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	Scope       string     `json:"scope"`
	SalonID     *int64     `json:"salonId,omitempty"`
	ServiceID   *int64     `json:"serviceId,omitempty"`
	UseLimit    *int64     `json:"useLimit,omitempty"`
	UsesLeft    *int64     `json:"usesLeft,omitempty"` // nil при безлимитном купоне
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
}

// CouponListResponse ответ со списком купонов
type CouponListResponse struct {
	Coupons []CouponResponse `json:"coupons"`
}

// FromDomainCoupon конвертирует domain модель в DTO.
// usesLeft считается из лимита и числа погашений.
func FromDomainCoupon(c *domain.Coupon, redeemed int64) CouponResponse {
	resp := CouponResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		Type:        string(c.Type),
		Value:       c.Value,
		Scope:       string(c.Scope),
		SalonID:     c.SalonID,
		ServiceID:   c.ServiceID,
		UseLimit:    c.UseLimit,
		StartsAt:    c.StartsAt,
		EndsAt:      c.EndsAt,
	}

	if c.UseLimit != nil {
		left := *c.UseLimit - redeemed
		if left < 0 {
			left = 0
		}
		resp.UsesLeft = &left
	}

	return resp
}
