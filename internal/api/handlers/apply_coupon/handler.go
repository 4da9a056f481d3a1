package apply_coupon

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	applyCoupon "github.com/aokiyama/SLB-ReservationService/internal/usecase/apply_coupon"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgReservationNotFound  = "бронь не найдена"
	msgIneligible           = "купон не может быть применен"
	msgAlreadyRedeemed      = "к этой брони уже применен купон"
	msgAccessDenied         = "нет доступа к этой брони"
)

type Handler struct {
	useCase ApplyCouponUseCase
	logger  Logger
}

func NewHandler(useCase ApplyCouponUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/coupon
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/coupon - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req ApplyCouponRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/coupon - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &applyCoupon.Request{
		ReservationID: reservationID,
		Actor:         actor,
		Code:          req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, applyCoupon.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/coupon - Not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgReservationNotFound)

		case errors.Is(err, applyCoupon.ErrIneligible):
			h.logger.Warn("POST /reservations/{id}/coupon - Ineligible: reservation_id=%d, code=%v",
				reservationID, req.Code)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgIneligible)

		case errors.Is(err, applyCoupon.ErrAlreadyRedeemed):
			h.logger.Warn("POST /reservations/{id}/coupon - Already redeemed: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyRedeemed)

		case errors.Is(err, applyCoupon.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/coupon - Access denied: reservation_id=%d, user_id=%d",
				reservationID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, applyCoupon.ErrInvalidInput):
			h.logger.Warn("POST /reservations/{id}/coupon - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /reservations/{id}/coupon - Failed: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /reservations/{id}/coupon - Priced: reservation_id=%d, amount=%d, coupon=%v",
		reservationID, response.FinalAmountJPY, response.CouponCode)
	handlers.RespondJSON(w, http.StatusOK, response)
}
