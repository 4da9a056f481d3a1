package get_available_slots

import (
	"context"
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
	staff     map[int64]*domain.SalonStaff
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
	if s, ok := f.staff[id]; ok {
		return s, nil
	}
	return nil, catalogStorage.ErrStaffNotFound
}

func (f *fakeCatalogRepo) ListActiveStaff(_ context.Context, salonID int64) ([]*domain.SalonStaff, error) {
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
	reservations []*domain.Reservation
}

func (f *fakeReservationRepo) ListWithFilter(_ context.Context, _ domain.ReservationsFilter) ([]*domain.Reservation, error) {
	return f.reservations, nil
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
		staff: map[int64]*domain.SalonStaff{},
		hours: map[int]*domain.WorkingHour{
			1: {SalonID: 1, Weekday: 1, Start: "10:00", End: "19:00"},
		},
	}
}

func newTestUseCase(catalog *fakeCatalogRepo, resRepo *fakeReservationRepo, now time.Time) *UseCase {
	uc := NewUseCase(catalog, resRepo, 15, noopLogger{})
	uc.timeProvider = &fixedClock{now: now}
	return uc
}

func slotStarts(resp *Response) []types.TimeString {
	starts := make([]types.TimeString, len(resp.Slots))
	for i, s := range resp.Slots {
		starts[i] = s.StartTime
	}
	return starts
}

// --- тесты ---

func TestExecute_OpenDayNoReservations(t *testing.T) {
	catalog := newTestCatalog()
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// 10:00 .. 18:00 с шагом 15 минут = 33 слота
	require.Len(t, resp.Slots, 33)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[32].StartTime)
	for _, slot := range resp.Slots {
		assert.Equal(t, 60, slot.DurationMinutes)
	}
}

func TestExecute_Idempotent(t *testing.T) {
	catalog := newTestCatalog()
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	first, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}

func TestExecute_StaffBusyBlocksOverlappingStarts(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff[100] = &domain.SalonStaff{ID: 100, SalonID: 1, IsActive: true}

	resRepo := &fakeReservationRepo{reservations: []*domain.Reservation{
		{
			ID:      1,
			SalonID: 1,
			StaffID: ptr.Ptr(int64(100)),
			StartAt: testDate.Add(12 * time.Hour),
			EndAt:   testDate.Add(13 * time.Hour),
			Status:  domain.StatusConfirmed,
		},
	}}

	uc := newTestUseCase(catalog, resRepo, testDate.Add(-12*time.Hour))
	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	starts := slotStarts(resp)
	// 60-минутный слот пересекается с бронью 12:00-13:00,
	// если начинается в (11:00, 13:00)
	assert.NotContains(t, starts, types.TimeString("11:15"))
	assert.NotContains(t, starts, types.TimeString("12:00"))
	assert.NotContains(t, starts, types.TimeString("12:45"))
	// граничное касание пересечением не считается
	assert.Contains(t, starts, types.TimeString("11:00"))
	assert.Contains(t, starts, types.TimeString("13:00"))
}

func TestExecute_CanceledReservationDoesNotBlock(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff[100] = &domain.SalonStaff{ID: 100, SalonID: 1, IsActive: true}

	resRepo := &fakeReservationRepo{reservations: []*domain.Reservation{
		{
			ID:      1,
			SalonID: 1,
			StaffID: ptr.Ptr(int64(100)),
			StartAt: testDate.Add(12 * time.Hour),
			EndAt:   testDate.Add(13 * time.Hour),
			Status:  domain.StatusCanceled,
		},
	}}

	uc := newTestUseCase(catalog, resRepo, testDate.Add(-12*time.Hour))
	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Contains(t, slotStarts(resp), types.TimeString("12:00"))
}

func TestExecute_AnyStaffModeSecondStaffKeepsSlotOpen(t *testing.T) {
	catalog := newTestCatalog()
	catalog.staff[100] = &domain.SalonStaff{ID: 100, SalonID: 1, IsActive: true}
	catalog.staff[101] = &domain.SalonStaff{ID: 101, SalonID: 1, IsActive: true}

	resRepo := &fakeReservationRepo{reservations: []*domain.Reservation{
		{
			ID:      1,
			SalonID: 1,
			StaffID: ptr.Ptr(int64(100)),
			StartAt: testDate.Add(12 * time.Hour),
			EndAt:   testDate.Add(13 * time.Hour),
			Status:  domain.StatusConfirmed,
		},
	}}

	uc := newTestUseCase(catalog, resRepo, testDate.Add(-12*time.Hour))

	// без указания мастера слот остается доступным: свободен второй мастер
	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Contains(t, slotStarts(resp), types.TimeString("12:00"))

	// с указанием занятого мастера — слот недоступен
	resp, err = uc.Execute(context.Background(), &Request{
		SalonID: 1, ServiceID: 10, StaffID: ptr.Ptr(int64(100)), Date: testDate,
	})
	require.NoError(t, err)
	assert.NotContains(t, slotStarts(resp), types.TimeString("12:00"))
}

func TestExecute_TodayExcludesPastSlots(t *testing.T) {
	catalog := newTestCatalog()
	// сейчас 12:05 того же дня
	now := testDate.Add(12*time.Hour + 5*time.Minute)
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, now)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("12:15"), resp.Slots[0].StartTime)
}

func TestExecute_PastDateReturnsEmpty(t *testing.T) {
	catalog := newTestCatalog()
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.AddDate(0, 0, 3))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ClosedDayReturnsEmpty(t *testing.T) {
	catalog := newTestCatalog()
	delete(catalog.hours, 1)
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PartialBlackoutCutsWindow(t *testing.T) {
	catalog := newTestCatalog()
	catalog.blackouts = []*domain.BlackoutDate{
		{
			SalonID: 1,
			Date:    testDate,
			Start:   ptr.Ptr(types.TimeString("13:00")),
			End:     ptr.Ptr(types.TimeString("15:00")),
		},
	}
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	starts := slotStarts(resp)
	// слот должен целиком помещаться в открытый интервал
	assert.Contains(t, starts, types.TimeString("12:00"))
	assert.NotContains(t, starts, types.TimeString("12:15"))
	assert.NotContains(t, starts, types.TimeString("14:00"))
	assert.Contains(t, starts, types.TimeString("15:00"))
}

func TestExecute_FullDayBlackoutReturnsEmpty(t *testing.T) {
	catalog := newTestCatalog()
	catalog.blackouts = []*domain.BlackoutDate{
		{SalonID: 1, Date: testDate},
	}
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_InactiveEntitiesReturnEmpty(t *testing.T) {
	t.Run("inactive salon", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.salons[1].IsActive = false
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

		resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("inactive service", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.services[10].IsActive = false
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

		resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: testDate})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("inactive staff", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.staff[100] = &domain.SalonStaff{ID: 100, SalonID: 1, IsActive: false}
		uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

		resp, err := uc.Execute(context.Background(), &Request{
			SalonID: 1, ServiceID: 10, StaffID: ptr.Ptr(int64(100)), Date: testDate,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})
}

func TestExecute_NotFoundAndMismatch(t *testing.T) {
	catalog := newTestCatalog()
	catalog.salons[2] = &domain.Salon{ID: 2, Name: "Other", IsActive: true}
	catalog.staff[200] = &domain.SalonStaff{ID: 200, SalonID: 2, IsActive: true}
	uc := newTestUseCase(catalog, &fakeReservationRepo{}, testDate.Add(-12*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{SalonID: 99, ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrSalonNotFound)

	_, err = uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 99, Date: testDate})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = uc.Execute(context.Background(), &Request{SalonID: 2, ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrServiceMismatch)

	_, err = uc.Execute(context.Background(), &Request{
		SalonID: 1, ServiceID: 10, StaffID: ptr.Ptr(int64(200)), Date: testDate,
	})
	assert.ErrorIs(t, err, ErrStaffMismatch)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(newTestCatalog(), &fakeReservationRepo{}, testDate)

	_, err := uc.Execute(context.Background(), &Request{SalonID: 0, ServiceID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
