package apply_coupon

import (
	"context"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateAmount(ctx context.Context, id int64, amountJPY int64) error
}

// CatalogRepository интерфейс репозитория справочных данных
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// CouponRepository интерфейс репозитория купонов
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	ListEligible(ctx context.Context, salonID, serviceID int64, now time.Time) ([]*domain.Coupon, error)
	CountRedemptions(ctx context.Context, couponID int64) (int64, error)
	GetRedemptionByReservation(ctx context.Context, reservationID int64) (*domain.CouponRedemption, error)
	CreateRedemption(ctx context.Context, redemption *domain.CouponRedemption) (*domain.CouponRedemption, error)
}

// AuditRecorder интерфейс записи в журнал изменений брони
type AuditRecorder interface {
	Record(ctx context.Context, reservationID int64, actorID *int64, action domain.ChangeLogAction, detail string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
