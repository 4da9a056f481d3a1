package get_user_reservations

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

type ReservationService interface {
	List(ctx context.Context, req *models.ListReservationsRequest, actor domain.Actor) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
