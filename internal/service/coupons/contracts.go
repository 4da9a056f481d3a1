package coupons

import (
	"context"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// CouponRepository интерфейс репозитория купонов
type CouponRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]*domain.Coupon, error)
	ListEligible(ctx context.Context, salonID, serviceID int64, now time.Time) ([]*domain.Coupon, error)
	CountRedemptions(ctx context.Context, couponID int64) (int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
