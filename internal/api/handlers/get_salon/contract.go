package get_salon

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/service/catalog/models"
)

type CatalogService interface {
	GetSalonDetail(ctx context.Context, salonID int64) (*models.SalonDetailResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
