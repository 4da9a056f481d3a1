package catalog

import (
	"context"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// CatalogRepository интерфейс репозитория справочных данных
type CatalogRepository interface {
	GetSalon(ctx context.Context, id int64) (*domain.Salon, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListServicesBySalon(ctx context.Context, salonID int64) ([]*domain.Service, error)
	DeactivateService(ctx context.Context, id int64) error
	ListActiveStaff(ctx context.Context, salonID int64) ([]*domain.SalonStaff, error)
	GetWorkingHour(ctx context.Context, salonID int64, weekday int) (*domain.WorkingHour, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	CountActiveByService(ctx context.Context, serviceID int64, from time.Time) (int64, error)
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
