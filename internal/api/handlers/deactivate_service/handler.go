package deactivate_service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	catalogService "github.com/aokiyama/SLB-ReservationService/internal/service/catalog"
)

const (
	msgInvalidServiceID       = "некорректный ID услуги"
	msgServiceNotFound        = "услуга не найдена"
	msgServiceHasReservations = "по услуге есть активные брони"
	msgAccessDenied           = "недостаточно прав для управления каталогом"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/services/{serviceId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /services/{id} - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	if err := h.service.DeactivateService(r.Context(), serviceID, actor); err != nil {
		switch {
		case errors.Is(err, catalogService.ErrServiceNotFound):
			h.logger.Warn("DELETE /services/{id} - Not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, catalogService.ErrServiceHasReservations):
			h.logger.Warn("DELETE /services/{id} - Has open reservations: service_id=%d", serviceID)
			handlers.RespondError(w, http.StatusConflict, msgServiceHasReservations)

		case errors.Is(err, catalogService.ErrAccessDenied):
			h.logger.Warn("DELETE /services/{id} - Access denied: service_id=%d, user_id=%d", serviceID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("DELETE /services/{id} - Failed: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /services/{id} - Deactivated: service_id=%d, actor_id=%d", serviceID, actor.ID)
	w.WriteHeader(http.StatusNoContent)
}
