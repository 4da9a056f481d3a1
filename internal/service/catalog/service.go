package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	catalogRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
	"github.com/aokiyama/SLB-ReservationService/internal/service/catalog/models"
)

// Service сервис справочника салонов: карточки салонов и управление
// жизненным циклом услуг
type Service struct {
	catalogRepo     CatalogRepository
	reservationRepo ReservationRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса справочника
func NewService(
	catalogRepo CatalogRepository,
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		catalogRepo:     catalogRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetSalonDetail собирает карточку салона: активные услуги, мастера
// и расписание по дням недели
func (s *Service) GetSalonDetail(ctx context.Context, salonID int64) (*models.SalonDetailResponse, error) {
	s.logger.Info("GetSalonDetail: fetching salon id=%d", salonID)

	salon, err := s.catalogRepo.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrSalonNotFound) {
			s.logger.Warn("GetSalonDetail: salon id=%d not found", salonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("GetSalonDetail: repository error for salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: GetSalonDetail - repository error: %v", ErrInternal, err)
	}

	services, err := s.catalogRepo.ListServicesBySalon(ctx, salonID)
	if err != nil {
		s.logger.Error("GetSalonDetail: failed to list services for salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: GetSalonDetail - repository error: %v", ErrInternal, err)
	}

	staff, err := s.catalogRepo.ListActiveStaff(ctx, salonID)
	if err != nil {
		s.logger.Error("GetSalonDetail: failed to list staff for salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: GetSalonDetail - repository error: %v", ErrInternal, err)
	}

	resp := &models.SalonDetailResponse{
		ID:           salon.ID,
		Name:         salon.Name,
		Phone:        salon.Phone,
		Description:  salon.Description,
		IsActive:     salon.IsActive,
		Services:     make([]models.ServiceResponse, 0, len(services)),
		Staff:        make([]models.StaffResponse, 0, len(staff)),
		WorkingHours: make([]models.WorkingHourResponse, 0, 7),
	}

	for _, svc := range services {
		resp.Services = append(resp.Services, models.FromDomainService(svc))
	}
	for _, member := range staff {
		resp.Staff = append(resp.Staff, models.FromDomainStaff(member))
	}

	// День без строки расписания считается выходным и в карточку не попадает
	for weekday := 0; weekday < 7; weekday++ {
		wh, err := s.catalogRepo.GetWorkingHour(ctx, salonID, weekday)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrWorkingHourNotFound) {
				continue
			}
			s.logger.Error("GetSalonDetail: failed to get working hours for salon id=%d: %v", salonID, err)
			return nil, fmt.Errorf("%w: GetSalonDetail - repository error: %v", ErrInternal, err)
		}
		resp.WorkingHours = append(resp.WorkingHours, models.FromDomainWorkingHour(wh))
	}

	return resp, nil
}

// DeactivateService снимает услугу с продажи.
// Услуга с открытыми бронями в будущем не деактивируется: ссылочная
// целостность проверяется явно, вместо каскада на стороне БД.
// Доступно только менеджерским ролям.
func (s *Service) DeactivateService(ctx context.Context, serviceID int64, actor domain.Actor) error {
	s.logger.Info("DeactivateService: service id=%d by actor id=%d role=%s", serviceID, actor.ID, actor.Role)

	if !actor.CanManageReservations() {
		s.logger.Warn("DeactivateService: access denied for actor id=%d", actor.ID)
		return ErrAccessDenied
	}

	now := s.timeProvider.Now()

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.catalogRepo.GetService(txCtx, serviceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: DeactivateService - repository error: %v", ErrInternal, err)
		}

		open, err := s.reservationRepo.CountActiveByService(txCtx, serviceID, now)
		if err != nil {
			return fmt.Errorf("%w: DeactivateService - repository error: %v", ErrInternal, err)
		}
		if open > 0 {
			s.logger.Warn("DeactivateService: service id=%d has %d open reservations", serviceID, open)
			return ErrServiceHasReservations
		}

		if err := s.catalogRepo.DeactivateService(txCtx, serviceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: DeactivateService - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("DeactivateService: failed for service id=%d: %v", serviceID, err)
		}
		return err
	}

	s.logger.Info("DeactivateService: service id=%d deactivated", serviceID)
	return nil
}
