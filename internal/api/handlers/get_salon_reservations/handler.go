package get_salon_reservations

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgInvalidStaffID = "некорректный ID мастера"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgAccessDenied   = "доступно только персоналу салона"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/reservations
// Query params: staffId, dateFrom, dateTo (YYYY-MM-DD), includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	if !actor.CanManageReservations() {
		h.logger.Warn("GET /salons/{id}/reservations - Access denied: actor_id=%d role=%s", actor.ID, actor.Role)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	salonID, err := strconv.ParseInt(mux.Vars(r)["salonId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/reservations - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	req := &models.ListReservationsRequest{
		SalonID:         &salonID,
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
	}

	if staffIDStr := r.URL.Query().Get("staffId"); staffIDStr != "" {
		staffID, err := strconv.ParseInt(staffIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /salons/{id}/reservations - Invalid staff ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStaffID)
			return
		}
		req.StaffID = &staffID
	}

	if fromStr := r.URL.Query().Get("dateFrom"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.DateFrom = &from
	}

	if toStr := r.URL.Query().Get("dateTo"); toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		// dateTo включительно: фильтр работает по правой открытой границе
		end := to.AddDate(0, 0, 1)
		req.DateTo = &end
	}

	result, err := h.service.List(r.Context(), req, actor)
	if err != nil {
		h.logger.Error("GET /salons/{id}/reservations - Failed: salon_id=%d, error=%v", salonID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /salons/{id}/reservations - Returning %d reservations: salon_id=%d",
		len(result.Reservations), salonID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
