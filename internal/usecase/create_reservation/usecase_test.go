package create_reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	catalogStorage "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
	"github.com/aokiyama/SLB-ReservationService/pkg/ptr"
	"github.com/aokiyama/SLB-ReservationService/pkg/types"
)

// --- фейки ---

type fakeCatalogRepo struct {
	salons    map[int64]*domain.Salon
	services  map[int64]*domain.Service
	staff     []*domain.SalonStaff
	hours     map[int]*domain.WorkingHour
	blackouts []*domain.BlackoutDate
}

func (f *fakeCatalogRepo) GetSalon(_ context.Context, id int64) (*domain.Salon, error) {
	if s, ok := f.salons[id]; ok {
		return s, nil
	}
	return nil, catalogStorage.ErrSalonNotFound
}

func (f *fakeCatalogRepo) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, catalogStorage.ErrServiceNotFound
}

func (f *fakeCatalogRepo) GetStaff(_ context.Context, id int64) (*domain.SalonStaff, error) {
	for _, s := range f.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, catalogStorage.ErrStaffNotFound
}

func (f *fakeCatalogRepo) ListActiveStaff(_ context.Context, salonID int64) ([]*domain.SalonStaff, error) {
	// как и настоящий репозиторий, возвращает упорядоченных по ID
	result := make([]*domain.SalonStaff, 0)
	for _, s := range f.staff {
		if s.SalonID == salonID && s.IsActive {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) GetWorkingHour(_ context.Context, _ int64, weekday int) (*domain.WorkingHour, error) {
	if wh, ok := f.hours[weekday]; ok {
		return wh, nil
	}
	return nil, catalogStorage.ErrWorkingHourNotFound
}

func (f *fakeCatalogRepo) ListBlackouts(_ context.Context, _ int64, _ time.Time) ([]*domain.BlackoutDate, error) {
	return f.blackouts, nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	reservations []*domain.Reservation
}

func (f *fakeReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	clone := *res
	clone.ID = f.nextID
	f.reservations = append(f.reservations, &clone)
	out := clone
	return &out, nil
}

func (f *fakeReservationRepo) ListWithFilter(_ context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if filter.SalonID != nil && r.SalonID != *filter.SalonID {
			continue
		}
		if !filter.IncludeInactive && !r.IsActive() {
			continue
		}
		clone := *r
		result = append(result, &clone)
	}
	return result, nil
}

type fakeAuditRecorder struct {
	mu      sync.Mutex
	actions []domain.ChangeLogAction
}

func (f *fakeAuditRecorder) Record(_ context.Context, _ int64, _ *int64, action domain.ChangeLogAction, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

// serialTxManager эмулирует сериализуемую изоляцию мьютексом:
// проверка конфликта и вставка выполняются как одна атомарная единица
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

// понедельник
var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestCatalog() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		salons: map[int64]*domain.Salon{
			1: {ID: 1, Name: "Cut & Color", IsActive: true},
		},
		services: map[int64]*domain.Service{
			10: {ID: 10, SalonID: 1, Name: "Cut", DurationMin: 60, PriceJPY: 5000, IsActive: true},
		},
		hours: map[int]*domain.WorkingHour{
			1: {SalonID: 1, Weekday: 1, Start: "10:00", End: "19:00"},
		},
	}
}

func newTestUseCase(catalog *fakeCatalogRepo, resRepo *fakeReservationRepo, audit *fakeAuditRecorder, now time.Time) *UseCase {
	uc := NewUseCase(catalog, resRepo, audit, &serialTxManager{}, noopLogger{})
	uc.timeProvider = &fixedClock{now: now}
	return uc
}

func requestAt(hour, minute int) *Request {
	return &Request{
		UserID:    7,
		SalonID:   1,
		ServiceID: 10,
		StartAt:   testDate.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
	}
}

// --- тесты ---

func TestExecute_CreatesPendingReservation(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff = []*domain.SalonStaff{{ID: 100, SalonID: 1, IsActive: true}}
	audit := &fakeAuditRecorder{}
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, audit, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), requestAt(10, 0))
	require.NoError(t, err)

	res := resp.Reservation
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, domain.PaymentUnpaid, res.PaymentStatus)
	assert.Equal(t, testDate.Add(10*time.Hour), res.StartAt)
	assert.Equal(t, testDate.Add(11*time.Hour), res.EndAt)
	require.NotNil(t, res.StaffID)
	assert.Equal(t, int64(100), *res.StaffID)
	assert.Nil(t, res.AmountJPY)
	assert.Equal(t, []domain.ChangeLogAction{domain.ActionCreate}, audit.actions)
}

func TestExecute_PastStartRejected(t *testing.T) {
	uc := newTestUseCase(newTestCatalog(), &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(14*time.Hour))

	_, err := uc.Execute(context.Background(), requestAt(12, 0))
	assert.ErrorIs(t, err, ErrPastTime)
}

func TestExecute_OutsideWorkingHoursRejected(t *testing.T) {
	uc := newTestUseCase(newTestCatalog(), &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	// 19:00 конец рабочего дня, слот 18:30-19:30 не помещается
	_, err := uc.Execute(context.Background(), requestAt(18, 30))
	assert.ErrorIs(t, err, ErrNotBookable)
}

func TestExecute_InsidePartialBlackoutRejected(t *testing.T) {
	catalog := newTestCatalog()
	catalog.blackouts = []*domain.BlackoutDate{
		{
			SalonID: 1,
			Date:    testDate,
			Start:   ptr.Ptr(types.TimeString("13:00")),
			End:     ptr.Ptr(types.TimeString("15:00")),
		},
	}
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	_, err := uc.Execute(context.Background(), requestAt(13, 30))
	assert.ErrorIs(t, err, ErrNotBookable)

	// слот, пересекающий границу блэкаута, тоже не помещается целиком
	_, err = uc.Execute(context.Background(), requestAt(12, 30))
	assert.ErrorIs(t, err, ErrNotBookable)

	// а до блэкаута — помещается
	_, err = uc.Execute(context.Background(), requestAt(12, 0))
	assert.NoError(t, err)
}

func TestExecute_InactiveEntitiesRejected(t *testing.T) {
	t.Run("inactive salon", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.salons[1].IsActive = false
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

		_, err := uc.Execute(context.Background(), requestAt(10, 0))
		assert.ErrorIs(t, err, ErrInactiveEntity)
	})

	t.Run("inactive service", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.services[10].IsActive = false
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

		_, err := uc.Execute(context.Background(), requestAt(10, 0))
		assert.ErrorIs(t, err, ErrInactiveEntity)
	})

	t.Run("inactive staff", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.staff = []*domain.SalonStaff{{ID: 100, SalonID: 1, IsActive: false}}
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

		req := requestAt(10, 0)
		req.StaffID = ptr.Ptr(int64(100))
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInactiveEntity)
	})
}

func TestExecute_RequestedStaffBusy(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff = []*domain.SalonStaff{
		{ID: 100, SalonID: 1, IsActive: true},
		{ID: 101, SalonID: 1, IsActive: true},
	}
	resRepo := &fakeReservationRepo{}
	uc := newTestUseCase(catalog, resRepo, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	first := requestAt(12, 0)
	first.StaffID = ptr.Ptr(int64(100))
	_, err := uc.Execute(context.Background(), first)
	require.NoError(t, err)

	// тот же мастер, пересекающееся окно
	second := requestAt(12, 30)
	second.StaffID = ptr.Ptr(int64(100))
	_, err = uc.Execute(context.Background(), second)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// другой мастер свободен
	third := requestAt(12, 30)
	third.StaffID = ptr.Ptr(int64(101))
	_, err = uc.Execute(context.Background(), third)
	assert.NoError(t, err)
}

// Автоподбор закрепляет наименее загруженного мастера,
// при равной загрузке — с меньшим ID.
func TestExecute_PinsLeastLoadedStaff(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff = []*domain.SalonStaff{
		{ID: 100, SalonID: 1, IsActive: true},
		{ID: 101, SalonID: 1, IsActive: true},
	}
	resRepo := &fakeReservationRepo{}
	uc := newTestUseCase(catalog, resRepo, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	// равная загрузка — выигрывает меньший ID
	resp, err := uc.Execute(context.Background(), requestAt(10, 0))
	require.NoError(t, err)
	require.NotNil(t, resp.Reservation.StaffID)
	assert.Equal(t, int64(100), *resp.Reservation.StaffID)

	// у мастера 100 теперь одна бронь — следующий достается мастеру 101
	resp, err = uc.Execute(context.Background(), requestAt(14, 0))
	require.NoError(t, err)
	require.NotNil(t, resp.Reservation.StaffID)
	assert.Equal(t, int64(101), *resp.Reservation.StaffID)
}

func TestExecute_NoRosterCreatesUnpinnedReservation(t *testing.T) {
	catalog := newTestCatalog()
	resRepo := &fakeReservationRepo{}
	uc := newTestUseCase(catalog, resRepo, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), requestAt(10, 0))
	require.NoError(t, err)
	assert.Nil(t, resp.Reservation.StaffID)

	// емкость салона без мастеров не ограничена
	_, err = uc.Execute(context.Background(), requestAt(10, 0))
	assert.NoError(t, err)
}

// Инвариант конфликтов: из N конкурентных запросов на одно окно одного
// мастера успешным становится ровно один.
func TestExecute_ConcurrentCreatesExactlyOneWins(t *testing.T) {
	const attempts = 16

	catalog := newTestCatalog()
	catalog.staff = []*domain.SalonStaff{{ID: 100, SalonID: 1, IsActive: true}}
	resRepo := &fakeReservationRepo{}
	uc := newTestUseCase(catalog, resRepo, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := requestAt(12, 0)
			req.StaffID = ptr.Ptr(int64(100))
			_, errs[i] = uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotConflict)
		}
	}
	assert.Equal(t, 1, succeeded)

	// у мастера не осталось пересекающихся активных броней
	stored, err := resRepo.ListWithFilter(context.Background(), domain.ReservationsFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestExecute_NoteTooLongRejected(t *testing.T) {
	uc := newTestUseCase(newTestCatalog(), &fakeReservationRepo{}, &fakeAuditRecorder{}, testDate.Add(-12*time.Hour))

	long := make([]byte, domain.MaxNoteLength+1)
	for i := range long {
		long[i] = 'a'
	}
	req := requestAt(10, 0)
	req.Note = ptr.Ptr(string(long))

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
