package audit

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// ChangeLogRepository интерфейс репозитория журнала изменений
type ChangeLogRepository interface {
	Append(ctx context.Context, entry *domain.ReservationChangeLog) error
	ListByReservation(ctx context.Context, reservationID int64) ([]*domain.ReservationChangeLog, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
