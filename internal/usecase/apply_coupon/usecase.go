package apply_coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	couponRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/coupon"
	reservationRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
)

// UseCase use case применения купона к брони.
// Реализует и явное применение по коду, и автоподбор лучшего купона.
type UseCase struct {
	reservationRepo ReservationRepository
	catalogRepo     CatalogRepository
	couponRepo      CouponRepository
	auditRecorder   AuditRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	catalogRepo CatalogRepository,
	couponRepo CouponRepository,
	auditRecorder AuditRecorder,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		couponRepo:      couponRepo,
		auditRecorder:   auditRecorder,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute применяет купон к брони и фиксирует итоговую сумму.
// Создание погашения, подсчет использований под лимитом и запись
// amount_jpy выполняются одной сериализуемой транзакцией: строка купона
// блокируется через FOR UPDATE, поэтому два конкурентных погашения
// купона с use_limit=1 не пройдут оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ApplyCoupon: reservation=%d, code=%v, actor=%d",
		req.ReservationID, req.Code, req.Actor.ID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ApplyCoupon: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		applied *domain.Coupon
		final   int64
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Бронь, с блокировкой строки
		reservation, err := uc.reservationRepo.GetByID(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
		}

		if reservation.UserID != req.Actor.ID && !req.Actor.CanManageReservations() {
			return ErrAccessDenied
		}

		// Купон применим только к открытой брони
		if reservation.IsTerminal() {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidInput, reservation.Status)
		}

		// 2. На бронь может быть не больше одного погашения
		_, err = uc.couponRepo.GetRedemptionByReservation(txCtx, req.ReservationID)
		if err == nil {
			return ErrAlreadyRedeemed
		}
		if !errors.Is(err, couponRepo.ErrRedemptionNotFound) {
			return fmt.Errorf("%w: failed to check redemption: %v", ErrInternal, err)
		}

		// 3. Цена услуги — база для скидки
		service, err := uc.catalogRepo.GetService(txCtx, reservation.ServiceID)
		if err != nil {
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		price := service.PriceJPY

		// 4. Разрешаем купон
		var coupon *domain.Coupon
		if req.Code != nil {
			coupon, err = uc.resolveByCode(txCtx, *req.Code, reservation, now)
			if err != nil {
				return err
			}
		} else {
			coupon, err = uc.resolveBest(txCtx, reservation, price, now)
			if err != nil {
				return err
			}
		}

		// 5. Фиксируем сумму; погашение создается только для конкретного купона
		if coupon == nil {
			final = price
		} else {
			final = coupon.FinalAmount(price)

			redemption := &domain.CouponRedemption{
				CouponID:      coupon.ID,
				UserID:        reservation.UserID,
				ReservationID: reservation.ID,
				UsedAt:        now,
			}
			if _, err := uc.couponRepo.CreateRedemption(txCtx, redemption); err != nil {
				if errors.Is(err, couponRepo.ErrRedemptionExists) {
					return ErrAlreadyRedeemed
				}
				return fmt.Errorf("%w: failed to create redemption: %v", ErrInternal, err)
			}
		}

		if err := uc.reservationRepo.UpdateAmount(txCtx, reservation.ID, final); err != nil {
			return fmt.Errorf("%w: failed to update amount: %v", ErrInternal, err)
		}

		applied = coupon
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("ApplyCoupon: failed for reservation id=%d: %v", req.ReservationID, err)
		} else {
			uc.logger.Warn("ApplyCoupon: rejected for reservation id=%d: %v", req.ReservationID, err)
		}
		return nil, err
	}

	// 6. Журнал пишется после коммита, best-effort
	detail := fmt.Sprintf("amount set to %d, coupon: none", final)
	if applied != nil {
		detail = fmt.Sprintf("amount set to %d, coupon: %s", final, applied.Code)
	}
	uc.auditRecorder.Record(ctx, req.ReservationID, &req.Actor.ID, domain.ActionApplyCoupon, detail)

	uc.logger.Info("ApplyCoupon: reservation id=%d priced at %d JPY", req.ReservationID, final)
	return &Response{Coupon: applied, FinalAmountJPY: final}, nil
}

// resolveByCode находит купон по коду и проверяет его применимость.
// Любая причина отказа — неизвестный код, неактивность, окно действия,
// область действия, исчерпанный лимит — дает ErrIneligible.
func (uc *UseCase) resolveByCode(ctx context.Context, code string, reservation *domain.Reservation, now time.Time) (*domain.Coupon, error) {
	coupon, err := uc.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			return nil, fmt.Errorf("%w: unknown code", ErrIneligible)
		}
		return nil, fmt.Errorf("%w: failed to get coupon: %v", ErrInternal, err)
	}

	if !coupon.IsActive {
		return nil, fmt.Errorf("%w: coupon is not active", ErrIneligible)
	}
	if !coupon.InWindow(now) {
		return nil, fmt.Errorf("%w: coupon is outside its validity window", ErrIneligible)
	}
	if !coupon.AppliesTo(reservation.SalonID, reservation.ServiceID) {
		return nil, fmt.Errorf("%w: coupon scope does not match", ErrIneligible)
	}

	ok, err := uc.underUseLimit(ctx, coupon)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: use limit exhausted", ErrIneligible)
	}

	return coupon, nil
}

// resolveBest выбирает лучший подходящий купон: максимальная скидка,
// при равенстве — лексикографически меньший код. Отсутствие подходящего
// купона не ошибка: бронь оценивается в полную стоимость услуги.
func (uc *UseCase) resolveBest(ctx context.Context, reservation *domain.Reservation, priceJPY int64, now time.Time) (*domain.Coupon, error) {
	candidates, err := uc.couponRepo.ListEligible(ctx, reservation.SalonID, reservation.ServiceID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list coupons: %v", ErrInternal, err)
	}

	var (
		best         *domain.Coupon
		bestDiscount int64
	)

	// candidates упорядочены по коду по возрастанию: строгое сравнение
	// "больше" сохраняет меньший код при равной скидке
	for _, coupon := range candidates {
		ok, err := uc.underUseLimit(ctx, coupon)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		discount := coupon.Discount(priceJPY)
		if best == nil || discount > bestDiscount {
			best = coupon
			bestDiscount = discount
		}
	}

	return best, nil
}

// underUseLimit проверяет, что лимит использований купона не исчерпан.
// Считается под блокировкой строки купона, поэтому подсчет атомарен
// относительно конкурентных погашений.
func (uc *UseCase) underUseLimit(ctx context.Context, coupon *domain.Coupon) (bool, error) {
	if coupon.UseLimit == nil {
		return true, nil
	}

	used, err := uc.couponRepo.CountRedemptions(ctx, coupon.ID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to count redemptions: %v", ErrInternal, err)
	}

	return used < *coupon.UseLimit, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ReservationID <= 0 {
		return fmt.Errorf("%w: reservationID must be positive", ErrInvalidInput)
	}

	if req.Actor.ID <= 0 {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	if req.Code != nil && *req.Code == "" {
		return fmt.Errorf("%w: code must not be empty", ErrInvalidInput)
	}

	return nil
}
