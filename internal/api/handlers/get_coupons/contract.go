package get_coupons

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/service/coupons/models"
)

type CouponService interface {
	List(ctx context.Context, req *models.ListCouponsRequest) (*models.CouponListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
