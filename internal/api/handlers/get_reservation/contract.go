package get_reservation

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
