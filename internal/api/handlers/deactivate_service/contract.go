package deactivate_service

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

type CatalogService interface {
	DeactivateService(ctx context.Context, serviceID int64, actor domain.Actor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
