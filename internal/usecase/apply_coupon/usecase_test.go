package apply_coupon

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	catalogStorage "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
	couponStorage "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/coupon"
	reservationStorage "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
	"github.com/aokiyama/SLB-ReservationService/pkg/ptr"
)

// --- фейки ---

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[int64]*domain.Reservation
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, reservationStorage.ErrReservationNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReservationRepo) UpdateAmount(_ context.Context, id int64, amountJPY int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return reservationStorage.ErrReservationNotFound
	}
	r.AmountJPY = &amountJPY
	return nil
}

type fakeCatalogRepo struct {
	services map[int64]*domain.Service
}

func (f *fakeCatalogRepo) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, catalogStorage.ErrServiceNotFound
}

type fakeCouponRepo struct {
	mu          sync.Mutex
	coupons     []*domain.Coupon
	redemptions []*domain.CouponRedemption
	nextID      int64
}

func (f *fakeCouponRepo) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, couponStorage.ErrCouponNotFound
}

func (f *fakeCouponRepo) ListEligible(_ context.Context, salonID, serviceID int64, now time.Time) ([]*domain.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domain.Coupon, 0)
	for _, c := range f.coupons {
		if c.IsActive && c.InWindow(now) && c.AppliesTo(salonID, serviceID) {
			result = append(result, c)
		}
	}
	// как и настоящий репозиторий, упорядочиваем по коду
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (f *fakeCouponRepo) CountRedemptions(_ context.Context, couponID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.redemptions {
		if r.CouponID == couponID {
			count++
		}
	}
	return count, nil
}

func (f *fakeCouponRepo) GetRedemptionByReservation(_ context.Context, reservationID int64) (*domain.CouponRedemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.redemptions {
		if r.ReservationID == reservationID {
			return r, nil
		}
	}
	return nil, couponStorage.ErrRedemptionNotFound
}

func (f *fakeCouponRepo) CreateRedemption(_ context.Context, redemption *domain.CouponRedemption) (*domain.CouponRedemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.redemptions {
		if r.ReservationID == redemption.ReservationID {
			return nil, couponStorage.ErrRedemptionExists
		}
	}
	f.nextID++
	clone := *redemption
	clone.ID = f.nextID
	f.redemptions = append(f.redemptions, &clone)
	return &clone, nil
}

type fakeAuditRecorder struct {
	mu      sync.Mutex
	details []string
}

func (f *fakeAuditRecorder) Record(_ context.Context, _ int64, _ *int64, _ domain.ChangeLogAction, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details = append(f.details, detail)
}

// serialTxManager эмулирует сериализуемую изоляцию мьютексом
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *serialTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// --- хелперы ---

var (
	testNow  = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	customer = domain.Actor{ID: 7, Role: domain.RoleCustomer}
)

func newFixture(coupons ...*domain.Coupon) (*UseCase, *fakeReservationRepo, *fakeCouponRepo, *fakeAuditRecorder) {
	resRepo := &fakeReservationRepo{reservations: map[int64]*domain.Reservation{
		1: {
			ID:        1,
			UserID:    7,
			SalonID:   1,
			ServiceID: 10,
			StartAt:   testNow.Add(3 * time.Hour),
			EndAt:     testNow.Add(4 * time.Hour),
			Status:    domain.StatusPending,
		},
		2: {
			ID:        2,
			UserID:    7,
			SalonID:   1,
			ServiceID: 10,
			StartAt:   testNow.Add(5 * time.Hour),
			EndAt:     testNow.Add(6 * time.Hour),
			Status:    domain.StatusConfirmed,
		},
	}}
	catalog := &fakeCatalogRepo{services: map[int64]*domain.Service{
		10: {ID: 10, SalonID: 1, Name: "Cut", DurationMin: 60, PriceJPY: 10000, IsActive: true},
	}}
	couponRepo := &fakeCouponRepo{coupons: coupons}
	audit := &fakeAuditRecorder{}

	uc := NewUseCase(resRepo, catalog, couponRepo, audit, &serialTxManager{}, noopLogger{})
	uc.timeProvider = &fixedClock{now: testNow}
	return uc, resRepo, couponRepo, audit
}

func percentCoupon(code string, value float64) *domain.Coupon {
	return &domain.Coupon{
		ID:       int64(len(code)),
		Code:     code,
		Type:     domain.CouponPercent,
		Value:    value,
		Scope:    domain.ScopeGlobal,
		IsActive: true,
	}
}

// --- тесты ---

func TestExecute_PercentCouponByCode(t *testing.T) {
	coupon := percentCoupon("SPRING15", 15.0)
	coupon.ID = 100
	uc, resRepo, couponRepo, audit := newFixture(coupon)

	resp, err := uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         customer,
		Code:          ptr.Ptr("SPRING15"),
	})
	require.NoError(t, err)

	// 15% от 10000 = скидка 1500
	assert.Equal(t, int64(8500), resp.FinalAmountJPY)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "SPRING15", resp.Coupon.Code)

	stored, err := resRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.AmountJPY)
	assert.Equal(t, int64(8500), *stored.AmountJPY)

	require.Len(t, couponRepo.redemptions, 1)
	assert.Equal(t, int64(100), couponRepo.redemptions[0].CouponID)
	require.Len(t, audit.details, 1)
	assert.Contains(t, audit.details[0], "SPRING15")
}

func TestExecute_AmountCouponFlooredAtZero(t *testing.T) {
	coupon := &domain.Coupon{
		ID:       200,
		Code:     "YEN1000",
		Type:     domain.CouponAmount,
		Value:    1000,
		Scope:    domain.ScopeGlobal,
		IsActive: true,
	}
	uc, _, _, _ := newFixture(coupon)

	// услуга за 500 иен: скидка 1000 не уводит сумму в минус
	uc.catalogRepo.(*fakeCatalogRepo).services[10].PriceJPY = 500

	resp, err := uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         customer,
		Code:          ptr.Ptr("YEN1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.FinalAmountJPY)
}

func TestExecute_BestCouponByMaxDiscount(t *testing.T) {
	uc, _, _, _ := newFixture(
		percentCoupon("AAA10", 10.0),
		percentCoupon("BBB20", 20.0),
	)

	resp, err := uc.Execute(context.Background(), &Request{ReservationID: 1, Actor: customer})
	require.NoError(t, err)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "BBB20", resp.Coupon.Code)
	assert.Equal(t, int64(8000), resp.FinalAmountJPY)
}

func TestExecute_BestCouponTieBreaksByCode(t *testing.T) {
	uc, _, _, _ := newFixture(
		percentCoupon("ZULU15", 15.0),
		percentCoupon("ALFA15", 15.0),
	)

	resp, err := uc.Execute(context.Background(), &Request{ReservationID: 1, Actor: customer})
	require.NoError(t, err)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "ALFA15", resp.Coupon.Code)
}

func TestExecute_NoEligibleCouponSetsFullPrice(t *testing.T) {
	uc, resRepo, couponRepo, _ := newFixture()

	resp, err := uc.Execute(context.Background(), &Request{ReservationID: 1, Actor: customer})
	require.NoError(t, err)
	assert.Nil(t, resp.Coupon)
	assert.Equal(t, int64(10000), resp.FinalAmountJPY)
	assert.Empty(t, couponRepo.redemptions)

	stored, err := resRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.AmountJPY)
	assert.Equal(t, int64(10000), *stored.AmountJPY)
}

func TestExecute_IneligibleReasons(t *testing.T) {
	salon2 := int64(2)
	inactive := percentCoupon("DEAD", 10.0)
	inactive.IsActive = false

	expired := percentCoupon("EXPIRED", 10.0)
	expired.EndsAt = ptr.Ptr(testNow.Add(-time.Hour))

	wrongSalon := percentCoupon("OTHERSALON", 10.0)
	wrongSalon.Scope = domain.ScopeSalon
	wrongSalon.SalonID = &salon2

	exhausted := percentCoupon("USEDUP", 10.0)
	exhausted.ID = 300
	exhausted.UseLimit = ptr.Ptr(int64(1))

	uc, _, couponRepo, _ := newFixture(inactive, expired, wrongSalon, exhausted)
	couponRepo.redemptions = []*domain.CouponRedemption{
		{ID: 1, CouponID: 300, UserID: 99, ReservationID: 999},
	}

	for _, code := range []string{"NOPE", "DEAD", "EXPIRED", "OTHERSALON", "USEDUP"} {
		_, err := uc.Execute(context.Background(), &Request{
			ReservationID: 1,
			Actor:         customer,
			Code:          &code,
		})
		assert.ErrorIs(t, err, ErrIneligible, "code=%s", code)
	}
}

func TestExecute_SecondRedemptionRejected(t *testing.T) {
	uc, _, _, _ := newFixture(percentCoupon("SPRING15", 15.0))

	_, err := uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         customer,
		Code:          ptr.Ptr("SPRING15"),
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         customer,
		Code:          ptr.Ptr("SPRING15"),
	})
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestExecute_ForeignReservationDenied(t *testing.T) {
	uc, _, _, _ := newFixture(percentCoupon("SPRING15", 15.0))

	other := domain.Actor{ID: 999, Role: domain.RoleCustomer}
	_, err := uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         other,
		Code:          ptr.Ptr("SPRING15"),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_TerminalReservationRejected(t *testing.T) {
	uc, resRepo, _, _ := newFixture(percentCoupon("SPRING15", 15.0))
	resRepo.reservations[1].Status = domain.StatusCanceled

	_, err := uc.Execute(context.Background(), &Request{
		ReservationID: 1,
		Actor:         customer,
		Code:          ptr.Ptr("SPRING15"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Купон с use_limit=1 на двух разных бронях: конкурентно выигрывает
// ровно одно погашение, второе получает ErrIneligible.
func TestExecute_UseLimitOneConcurrent(t *testing.T) {
	limited := percentCoupon("ONEUSE", 10.0)
	limited.ID = 400
	limited.UseLimit = ptr.Ptr(int64(1))
	uc, _, couponRepo, _ := newFixture(limited)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{
				ReservationID: int64(i + 1),
				Actor:         customer,
				Code:          ptr.Ptr("ONEUSE"),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrIneligible)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, couponRepo.redemptions, 1)
}
