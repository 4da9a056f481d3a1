package apply_coupon

import (
	applyCoupon "github.com/aokiyama/SLB-ReservationService/internal/usecase/apply_coupon"
)

// ApplyCouponRequest HTTP request model.
// Пустой code означает автоподбор лучшего купона.
type ApplyCouponRequest struct {
	Code *string `json:"code,omitempty"`
}

// ApplyCouponResponse HTTP response model
type ApplyCouponResponse struct {
	CouponCode     *string `json:"couponCode,omitempty"`
	FinalAmountJPY int64   `json:"finalAmountJpy"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *applyCoupon.Response) *ApplyCouponResponse {
	out := &ApplyCouponResponse{FinalAmountJPY: resp.FinalAmountJPY}
	if resp.Coupon != nil {
		out.CouponCode = &resp.Coupon.Code
	}
	return out
}
