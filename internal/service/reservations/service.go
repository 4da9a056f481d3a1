package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	reservationRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

// Service сервис жизненного цикла броней: переводы статусов и чтение.
// Единственный писатель статуса брони после её создания.
type Service struct {
	reservationRepo ReservationRepository
	auditRecorder   AuditRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	reservationRepo ReservationRepository,
	auditRecorder AuditRecorder,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		auditRecorder:   auditRecorder,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Transition переводит бронь в целевой статус.
// Переход выполняется в транзакции: чтение с блокировкой строки плюс
// оптимистичная проверка исходного статуса при записи. Проигравший
// конкурентную гонку получает ErrInvalidTransition, а не тихую перезапись.
func (s *Service) Transition(ctx context.Context, reservationID int64, targetStatus string, actor domain.Actor) (*models.ReservationResponse, error) {
	s.logger.Info("Transition: reservation id=%d to status=%s by actor id=%d role=%s",
		reservationID, targetStatus, actor.ID, actor.Role)

	target, ok := domain.ParseReservationStatus(targetStatus)
	if !ok {
		s.logger.Warn("Transition: invalid target status=%s for reservation id=%d", targetStatus, reservationID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	now := s.timeProvider.Now()

	var (
		updated  *domain.Reservation
		auditMsg string
		auditTag domain.ChangeLogAction
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: Transition - repository error: %v", ErrInternal, err)
		}

		if err := s.checkActorAccess(reservation, actor); err != nil {
			return err
		}

		action, err := checkTransition(reservation, target, actor, now)
		if err != nil {
			return err
		}

		from := reservation.Status
		if err := s.reservationRepo.UpdateStatus(ctx, reservationID, from, target); err != nil {
			if errors.Is(err, reservationRepo.ErrStaleStatus) {
				// Статус сменили параллельно между чтением и записью
				return ErrInvalidTransition
			}
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: Transition - repository error: %v", ErrInternal, err)
		}

		reservation.Status = target
		updated = reservation
		auditTag = action
		auditMsg = fmt.Sprintf("status: %s -> %s, actor role: %s", from, target, actor.Role)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.logger.Warn("Transition: rejected for reservation id=%d to status=%s: %v", reservationID, target, err)
		} else if !errors.Is(err, ErrReservationNotFound) && !errors.Is(err, ErrAccessDenied) {
			s.logger.Error("Transition: failed for reservation id=%d: %v", reservationID, err)
		}
		return nil, err
	}

	// Журнал пишется после коммита: запись best-effort и не откатывается
	// вместе с транзакцией перехода
	s.auditRecorder.Record(ctx, reservationID, &actor.ID, auditTag, auditMsg)

	s.logger.Info("Transition: reservation id=%d moved to status=%s", reservationID, target)
	return models.FromDomainReservation(updated), nil
}

// GetByID получает бронь по ID.
// Клиент видит только собственную бронь, менеджерские роли — любую.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for actor id=%d", id, actor.ID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkActorAccess(reservation, actor); err != nil {
		s.logger.Warn("GetByID: access denied for actor id=%d to reservation id=%d", actor.ID, id)
		return nil, err
	}

	return models.FromDomainReservation(reservation), nil
}

// List получает список броней с фильтрацией, упорядоченный по start_at.
// Клиентская роль всегда ограничена собственными бронями независимо от фильтра.
func (s *Service) List(ctx context.Context, req *models.ListReservationsRequest, actor domain.Actor) (*models.ReservationListResponse, error) {
	filter := req.ToDomainFilter()

	if actor.Role == domain.RoleCustomer {
		filter.UserID = &actor.ID
	}

	s.logger.Info("List: fetching reservations for actor id=%d role=%s", actor.ID, actor.Role)

	reservations, err := s.reservationRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d reservations for actor id=%d", len(reservations), actor.ID)
	return models.FromDomainReservationList(reservations), nil
}

// checkActorAccess проверяет доступ актора к брони:
// владелец брони или менеджерская роль
func (s *Service) checkActorAccess(reservation *domain.Reservation, actor domain.Actor) error {
	if reservation.UserID == actor.ID {
		return nil
	}
	if actor.CanManageReservations() {
		return nil
	}
	return ErrAccessDenied
}
