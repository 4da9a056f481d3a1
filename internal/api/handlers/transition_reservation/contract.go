package transition_reservation

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	Transition(ctx context.Context, reservationID int64, targetStatus string, actor domain.Actor) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
