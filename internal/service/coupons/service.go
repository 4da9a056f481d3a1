package coupons

import (
	"context"
	"fmt"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/internal/service/coupons/models"
)

// Service сервис витрины купонов: список действующих купонов
// с остатком использований. Само применение купона к брони живет
// в usecase apply_coupon.
type Service struct {
	couponRepo   CouponRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса купонов
func NewService(couponRepo CouponRepository, logger Logger) *Service {
	return &Service{
		couponRepo:   couponRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// List возвращает действующие купоны.
// С парой салон+услуга список сужается до применимых к ней; купоны
// с исчерпанным лимитом использований в выдачу не попадают.
func (s *Service) List(ctx context.Context, req *models.ListCouponsRequest) (*models.CouponListResponse, error) {
	if (req.SalonID == nil) != (req.ServiceID == nil) {
		return nil, fmt.Errorf("%w: salonId and serviceId must be passed together", ErrInvalidInput)
	}

	now := s.timeProvider.Now()

	var (
		coupons []*domain.Coupon
		err     error
	)
	if req.SalonID != nil {
		s.logger.Info("ListCoupons: fetching coupons for salon=%d, service=%d", *req.SalonID, *req.ServiceID)
		coupons, err = s.couponRepo.ListEligible(ctx, *req.SalonID, *req.ServiceID, now)
	} else {
		s.logger.Info("ListCoupons: fetching all active coupons")
		coupons, err = s.couponRepo.ListActive(ctx, now)
	}
	if err != nil {
		s.logger.Error("ListCoupons: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	resp := &models.CouponListResponse{Coupons: make([]models.CouponResponse, 0, len(coupons))}
	for _, coupon := range coupons {
		var redeemed int64
		if coupon.UseLimit != nil {
			redeemed, err = s.couponRepo.CountRedemptions(ctx, coupon.ID)
			if err != nil {
				s.logger.Error("ListCoupons: failed to count redemptions for coupon id=%d: %v", coupon.ID, err)
				return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
			}
			if redeemed >= *coupon.UseLimit {
				continue
			}
		}
		resp.Coupons = append(resp.Coupons, models.FromDomainCoupon(coupon, redeemed))
	}

	s.logger.Info("ListCoupons: returning %d coupons", len(resp.Coupons))
	return resp, nil
}
