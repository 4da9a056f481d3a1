package get_coupons

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	couponsService "github.com/aokiyama/SLB-ReservationService/internal/service/coupons"
	"github.com/aokiyama/SLB-ReservationService/internal/service/coupons/models"
)

const (
	msgInvalidSalonID   = "некорректный ID салона"
	msgInvalidServiceID = "некорректный ID услуги"
)

type Handler struct {
	service CouponService
	logger  Logger
}

func NewHandler(service CouponService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/coupons
// Query params: salonId + serviceId (опционально, только вместе)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListCouponsRequest{}

	if salonIDStr := r.URL.Query().Get("salonId"); salonIDStr != "" {
		salonID, err := strconv.ParseInt(salonIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /coupons - Invalid salon ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSalonID)
			return
		}
		req.SalonID = &salonID
	}

	if serviceIDStr := r.URL.Query().Get("serviceId"); serviceIDStr != "" {
		serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /coupons - Invalid service ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		req.ServiceID = &serviceID
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, couponsService.ErrInvalidInput) {
			h.logger.Warn("GET /coupons - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())
			return
		}
		h.logger.Error("GET /coupons - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /coupons - Returning %d coupons", len(result.Coupons))
	handlers.RespondJSON(w, http.StatusOK, result)
}
