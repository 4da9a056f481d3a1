package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	catalogRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
)

// UseCase use case для получения доступных слотов.
// Чисто читающая операция: "нет доступности" — нормальный результат
// (пустой список), а не ошибка. Неактивный салон/услуга/мастер тоже
// дают пустой список.
type UseCase struct {
	catalogRepo     CatalogRepository
	reservationRepo ReservationRepository
	slotStepMinutes int
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// slotStepMinutes задает шаг сетки кандидатов (slot_step_minutes из конфига);
// значение вне допустимого диапазона заменяется дефолтом.
func NewUseCase(
	catalogRepo CatalogRepository,
	reservationRepo ReservationRepository,
	slotStepMinutes int,
	logger Logger,
) *UseCase {
	if slotStepMinutes < domain.MinSlotStepMinutes || slotStepMinutes > domain.MaxSlotStepMinutes {
		slotStepMinutes = domain.DefaultSlotStepMinutes
	}

	return &UseCase{
		catalogRepo:     catalogRepo,
		reservationRepo: reservationRepo,
		slotStepMinutes: slotStepMinutes,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, service=%d, staff=%v, date=%s",
		req.SalonID, req.ServiceID, req.StaffID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	emptyResponse := &Response{
		Date:      req.Date,
		SalonID:   req.SalonID,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		Slots:     []Slot{},
	}

	// Дата в прошлом — доступности нет
	if isDateInPast(req.Date, now) {
		return emptyResponse, nil
	}

	// 3. Получаем салон
	salon, err := uc.catalogRepo.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	// 4. Получаем услугу и проверяем принадлежность салону
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.SalonID != req.SalonID {
		uc.logger.Warn("GetAvailableSlots: service id=%d belongs to salon id=%d, requested salon id=%d",
			req.ServiceID, service.SalonID, req.SalonID)
		return nil, ErrServiceMismatch
	}

	// Неактивный салон или услуга — пустой список, не ошибка
	if !salon.IsActive || !service.IsActive {
		uc.logger.Info("GetAvailableSlots: salon id=%d or service id=%d inactive, no availability",
			req.SalonID, req.ServiceID)
		return emptyResponse, nil
	}

	// 5. Если указан мастер — проверяем его
	if req.StaffID != nil {
		staff, err := uc.catalogRepo.GetStaff(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				uc.logger.Warn("GetAvailableSlots: staff id=%d not found", *req.StaffID)
				return nil, ErrStaffNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
		}
		if staff.SalonID != req.SalonID {
			return nil, ErrStaffMismatch
		}
		if !staff.IsActive {
			return emptyResponse, nil
		}
	}

	// 6. Открытые интервалы дня: рабочие часы минус блэкауты
	weekday := int(req.Date.Weekday())
	workingHour, err := uc.catalogRepo.GetWorkingHour(ctx, req.SalonID, weekday)
	if err != nil && !errors.Is(err, catalogRepo.ErrWorkingHourNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get working hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	blackouts, err := uc.catalogRepo.ListBlackouts(ctx, req.SalonID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get blackouts: %v", err)
		return nil, fmt.Errorf("%w: failed to get blackouts: %v", ErrInternal, err)
	}

	intervals := domain.OpenIntervals(workingHour, blackouts)
	if len(intervals) == 0 {
		uc.logger.Info("GetAvailableSlots: salon id=%d has no open intervals on %s",
			req.SalonID, req.Date.Format(domain.DateFormat))
		return emptyResponse, nil
	}

	// 7. Генерируем кандидатов слотов
	candidates := generateCandidates(intervals, service.DurationMin, uc.slotStepMinutes, req.Date, now)
	if len(candidates) == 0 {
		return emptyResponse, nil
	}

	// 8. Активные брони салона на эту дату
	dayStart, dayEnd := dayBounds(req.Date)
	filter := domain.ReservationsFilter{
		SalonID:  &req.SalonID,
		DateFrom: &dayStart,
		DateTo:   &dayEnd,
	}
	reservations, err := uc.reservationRepo.ListWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	// 9. Активные мастера салона
	staff, err := uc.catalogRepo.ListActiveStaff(ctx, req.SalonID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get staff list: %v", err)
		return nil, fmt.Errorf("%w: failed to get staff list: %v", ErrInternal, err)
	}

	// 10. Фильтруем кандидатов по занятости мастеров
	availableStarts := filterByStaffAvailability(
		candidates,
		service.DurationMin,
		req.Date,
		req.StaffID,
		staff,
		reservations,
	)

	slots := make([]Slot, len(availableStarts))
	for i, start := range availableStarts {
		slots[i] = Slot{
			StartTime:       start,
			DurationMinutes: service.DurationMin,
		}
	}

	uc.logger.Info("GetAvailableSlots: %d slots available for salon=%d, service=%d, date=%s",
		len(slots), req.SalonID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:      req.Date,
		SalonID:   req.SalonID,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		Slots:     slots,
	}, nil
}
