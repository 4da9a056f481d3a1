package create_reservation

import (
	"errors"
	"net/http"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	createReservation "github.com/aokiyama/SLB-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSalonNotFound      = "салон не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgStaffNotFound      = "мастер не найден"
	msgServiceMismatch    = "услуга не принадлежит этому салону"
	msgStaffMismatch      = "мастер не принадлежит этому салону"
	msgInactiveEntity     = "салон, услуга или мастер недоступны для записи"
	msgPastTime           = "время начала уже прошло"
	msgNotBookable        = "выбранное время вне часов работы салона"
	msgSlotConflict       = "выбранный временной слот уже занят"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor.ID))
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotConflict):
			h.logger.Warn("POST /reservations - Slot conflict: user_id=%d, salon_id=%d", actor.ID, req.SalonID)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createReservation.ErrSalonNotFound):
			h.logger.Warn("POST /reservations - Salon not found: salon_id=%d", req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createReservation.ErrServiceNotFound):
			h.logger.Warn("POST /reservations - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createReservation.ErrStaffNotFound):
			h.logger.Warn("POST /reservations - Staff not found: staff_id=%v", req.StaffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, createReservation.ErrServiceMismatch):
			h.logger.Warn("POST /reservations - Service mismatch: salon_id=%d, service_id=%d", req.SalonID, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceMismatch)

		case errors.Is(err, createReservation.ErrStaffMismatch):
			h.logger.Warn("POST /reservations - Staff mismatch: salon_id=%d, staff_id=%v", req.SalonID, req.StaffID)
			handlers.RespondBadRequest(w, msgStaffMismatch)

		case errors.Is(err, createReservation.ErrInactiveEntity):
			h.logger.Warn("POST /reservations - Inactive entity: salon_id=%d, service_id=%d", req.SalonID, req.ServiceID)
			handlers.RespondBadRequest(w, msgInactiveEntity)

		case errors.Is(err, createReservation.ErrPastTime):
			h.logger.Warn("POST /reservations - Past start time: user_id=%d", actor.ID)
			handlers.RespondBadRequest(w, msgPastTime)

		case errors.Is(err, createReservation.ErrNotBookable):
			h.logger.Warn("POST /reservations - Slot outside open intervals: user_id=%d, salon_id=%d", actor.ID, req.SalonID)
			handlers.RespondBadRequest(w, msgNotBookable)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, salon_id=%d, error=%v",
				actor.ID, req.SalonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, user_id=%d, salon_id=%d",
		response.ID, actor.ID, req.SalonID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
