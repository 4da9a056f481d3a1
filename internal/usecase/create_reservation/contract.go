package create_reservation

import (
	"context"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// CatalogRepository интерфейс репозитория справочных данных
type CatalogRepository interface {
	GetSalon(ctx context.Context, id int64) (*domain.Salon, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.SalonStaff, error)
	ListActiveStaff(ctx context.Context, salonID int64) ([]*domain.SalonStaff, error)
	GetWorkingHour(ctx context.Context, salonID int64, weekday int) (*domain.WorkingHour, error)
	ListBlackouts(ctx context.Context, salonID int64, date time.Time) ([]*domain.BlackoutDate, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	ListWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
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
