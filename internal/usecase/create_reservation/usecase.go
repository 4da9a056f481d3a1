package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	catalogRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
	reservationRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
)

// UseCase use case для создания брони
type UseCase struct {
	catalogRepo     CatalogRepository
	reservationRepo ReservationRepository
	auditRecorder   AuditRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	reservationRepo ReservationRepository,
	auditRecorder AuditRecorder,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		reservationRepo: reservationRepo,
		auditRecorder:   auditRecorder,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания брони.
// Проверка конфликтов и вставка выполняются одной сериализуемой
// транзакцией: дневное окно броней читается с блокировкой строк, а
// уникальный индекс на (staff_id, start_at, end_at) служит страховкой
// для мультипроцессного развертывания. Из двух конкурентных запросов
// на одно окно успешным будет ровно один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, salon=%d, service=%d, staff=%v, start=%s",
		req.UserID, req.SalonID, req.ServiceID, req.StaffID, req.StartAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	if !req.StartAt.After(now) {
		uc.logger.Warn("CreateReservation: start=%s is in the past", req.StartAt.Format(time.RFC3339))
		return nil, ErrPastTime
	}

	// 3. Получаем салон
	salon, err := uc.catalogRepo.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrSalonNotFound) {
			uc.logger.Warn("CreateReservation: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateReservation: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsActive {
		return nil, fmt.Errorf("%w: salon id=%d", ErrInactiveEntity, req.SalonID)
	}

	// 4. Получаем услугу и проверяем принадлежность салону
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateReservation: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateReservation: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.SalonID != req.SalonID {
		return nil, ErrServiceMismatch
	}
	if !service.IsActive {
		return nil, fmt.Errorf("%w: service id=%d", ErrInactiveEntity, req.ServiceID)
	}

	// 5. Если мастер указан — проверяем его
	if req.StaffID != nil {
		staff, err := uc.catalogRepo.GetStaff(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				uc.logger.Warn("CreateReservation: staff id=%d not found", *req.StaffID)
				return nil, ErrStaffNotFound
			}
			uc.logger.Error("CreateReservation: failed to get staff id=%d: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
		}
		if staff.SalonID != req.SalonID {
			return nil, ErrStaffMismatch
		}
		if !staff.IsActive {
			return nil, fmt.Errorf("%w: staff id=%d", ErrInactiveEntity, *req.StaffID)
		}
	}

	// end_at всегда вычисляется из длительности услуги
	endAt := req.StartAt.Add(time.Duration(service.DurationMin) * time.Minute)

	var result *domain.Reservation

	// 6. Проверка конфликтов и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Слот должен целиком попадать в открытый интервал дня
		if err := uc.checkSlotBookable(txCtx, req.SalonID, req.StartAt, endAt, service.DurationMin); err != nil {
			return err
		}

		// 6.2. Дневное окно активных броней салона, с блокировкой FOR UPDATE
		dayStart, dayEnd := dayBounds(req.StartAt)
		filter := domain.ReservationsFilter{
			SalonID:  &req.SalonID,
			DateFrom: &dayStart,
			DateTo:   &dayEnd,
		}
		reservations, err := uc.reservationRepo.ListWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		// 6.3. Разрешаем мастера
		staffID, err := uc.resolveStaff(txCtx, req, reservations, endAt)
		if err != nil {
			return err
		}

		// 6.4. Создаем бронь
		reservation := &domain.Reservation{
			UserID:        req.UserID,
			SalonID:       req.SalonID,
			ServiceID:     req.ServiceID,
			StaffID:       staffID,
			StartAt:       req.StartAt,
			EndAt:         endAt,
			Status:        domain.StatusPending,
			PaymentStatus: domain.PaymentUnpaid,
			Note:          req.Note,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrSlotTaken) {
				// Сработал уникальный индекс — конкурент успел раньше
				uc.logger.Warn("CreateReservation: slot taken concurrently, staff=%v, start=%s",
					staffID, req.StartAt.Format(time.RFC3339))
				return ErrSlotConflict
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 7. Журнал пишется после коммита, best-effort
	detail := fmt.Sprintf("reservation created, status: %s", result.Status)
	uc.auditRecorder.Record(ctx, result.ID, &req.UserID, domain.ActionCreate, detail)

	uc.logger.Info("CreateReservation: created reservation id=%d, staff=%v, start=%s",
		result.ID, result.StaffID, result.StartAt.Format(time.RFC3339))

	return &Response{Reservation: result}, nil
}

// checkSlotBookable проверяет, что окно [startAt, endAt) целиком лежит
// в одном открытом интервале дня: рабочие часы минус блэкауты
func (uc *UseCase) checkSlotBookable(ctx context.Context, salonID int64, startAt, endAt time.Time, durationMin int) error {
	weekday := int(startAt.Weekday())
	workingHour, err := uc.catalogRepo.GetWorkingHour(ctx, salonID, weekday)
	if err != nil && !errors.Is(err, catalogRepo.ErrWorkingHourNotFound) {
		uc.logger.Error("CreateReservation: failed to get working hours: %v", err)
		return fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	blackouts, err := uc.catalogRepo.ListBlackouts(ctx, salonID, startAt)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get blackouts: %v", err)
		return fmt.Errorf("%w: failed to get blackouts: %v", ErrInternal, err)
	}

	intervals := domain.OpenIntervals(workingHour, blackouts)

	startMinutes := startAt.Hour()*60 + startAt.Minute()
	endMinutes := startMinutes + durationMin

	for _, interval := range intervals {
		if interval.Start.Minutes() <= startMinutes && endMinutes <= interval.End.Minutes() {
			return nil
		}
	}

	uc.logger.Warn("CreateReservation: slot %s-%s is not inside an open interval of salon id=%d",
		startAt.Format(domain.TimeFormat), endAt.Format(domain.TimeFormat), salonID)
	return ErrNotBookable
}

// resolveStaff возвращает ID мастера для брони.
// Указанный клиентом мастер проверяется на конфликт; не указанный —
// подбирается детерминированно (pickStaff). Салон без мастеров вообще
// дает бронь без мастера и без проверки конфликтов: емкость такого
// салона не ограничена расписанием мастеров.
func (uc *UseCase) resolveStaff(ctx context.Context, req *Request, reservations []*domain.Reservation, endAt time.Time) (*int64, error) {
	if req.StaffID != nil {
		if !staffFree(*req.StaffID, req.StartAt, endAt, reservations) {
			uc.logger.Warn("CreateReservation: staff id=%d is busy at %s",
				*req.StaffID, req.StartAt.Format(time.RFC3339))
			return nil, ErrSlotConflict
		}
		return req.StaffID, nil
	}

	staff, err := uc.catalogRepo.ListActiveStaff(ctx, req.SalonID)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get staff list: %v", err)
		return nil, fmt.Errorf("%w: failed to get staff list: %v", ErrInternal, err)
	}

	if len(staff) == 0 {
		return nil, nil
	}

	picked := pickStaff(staff, reservations, req.StartAt, endAt)
	if picked == nil {
		uc.logger.Warn("CreateReservation: no free staff in salon id=%d at %s",
			req.SalonID, req.StartAt.Format(time.RFC3339))
		return nil, ErrSlotConflict
	}

	uc.logger.Info("CreateReservation: pinned staff id=%d for salon id=%d", picked.ID, req.SalonID)
	return &picked.ID, nil
}

// dayBounds возвращает границы суток даты [начало, начало следующего дня)
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
