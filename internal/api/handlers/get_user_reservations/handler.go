package get_user_reservations

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgAccessDenied  = "нет доступа к броням этого пользователя"
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

// Handle GET /api/v1/users/{userId}/reservations
// Query params: includeInactive (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{id}/reservations - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	// Чужая история доступна только менеджерским ролям; для клиента
	// сервис сам сузит выборку до его собственных броней
	if userID != actor.ID && !actor.CanManageReservations() {
		h.logger.Warn("GET /users/{id}/reservations - Access denied: user_id=%d, actor_id=%d", userID, actor.ID)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	req := &models.ListReservationsRequest{
		UserID:          &userID,
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
	}

	result, err := h.service.List(r.Context(), req, actor)
	if err != nil {
		h.logger.Error("GET /users/{id}/reservations - Failed: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/{id}/reservations - Returning %d reservations: user_id=%d",
		len(result.Reservations), userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
