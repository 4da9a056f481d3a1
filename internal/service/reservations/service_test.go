package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	reservationRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
	"github.com/aokiyama/SLB-ReservationService/internal/service/reservations/models"
)

// --- фейки ---

// fakeReservationRepo потокобезопасный in-memory репозиторий:
// UpdateStatus повторяет оптимистичную семантику настоящего репозитория
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[int64]*domain.Reservation
}

func newFakeReservationRepo(reservations ...*domain.Reservation) *fakeReservationRepo {
	repo := &fakeReservationRepo{reservations: make(map[int64]*domain.Reservation)}
	for _, r := range reservations {
		clone := *r
		repo.reservations[r.ID] = &clone
	}
	return repo
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReservationRepo) ListWithFilter(_ context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
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

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id int64, from, to domain.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if r.Status != from {
		return reservationRepo.ErrStaleStatus
	}
	r.Status = to
	return nil
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

// fakeTxManager просто вызывает fn: атомарность в тестах обеспечивает
// оптимистичная проверка статуса в фейковом репозитории
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
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

func newTestService(repo *fakeReservationRepo, audit *fakeAuditRecorder, now time.Time) *Service {
	svc := NewService(repo, audit, fakeTxManager{}, noopLogger{})
	svc.timeProvider = &fixedClock{now: now}
	return svc
}

// --- тесты ---

func TestTransition_ConfirmAndAudit(t *testing.T) {
	repo := newFakeReservationRepo(reservationIn(domain.StatusPending))
	audit := &fakeAuditRecorder{}
	svc := newTestService(repo, audit, trStart.Add(-time.Hour))

	resp, err := svc.Transition(context.Background(), 1, "confirmed", customer)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, []domain.ChangeLogAction{domain.ActionConfirm}, audit.actions)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestTransition_NotFound(t *testing.T) {
	svc := newTestService(newFakeReservationRepo(), &fakeAuditRecorder{}, trStart)

	_, err := svc.Transition(context.Background(), 42, "confirmed", admin)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestTransition_InvalidTargetStatus(t *testing.T) {
	repo := newFakeReservationRepo(reservationIn(domain.StatusPending))
	svc := newTestService(repo, &fakeAuditRecorder{}, trStart.Add(-time.Hour))

	_, err := svc.Transition(context.Background(), 1, "approved", admin)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransition_ForeignReservationDenied(t *testing.T) {
	repo := newFakeReservationRepo(reservationIn(domain.StatusPending))
	svc := newTestService(repo, &fakeAuditRecorder{}, trStart.Add(-time.Hour))

	other := domain.Actor{ID: 999, Role: domain.RoleCustomer}
	_, err := svc.Transition(context.Background(), 1, "canceled", other)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestTransition_RejectedDoesNotAudit(t *testing.T) {
	repo := newFakeReservationRepo(reservationIn(domain.StatusCompleted))
	audit := &fakeAuditRecorder{}
	svc := newTestService(repo, audit, trEnd.Add(time.Hour))

	_, err := svc.Transition(context.Background(), 1, "canceled", admin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, audit.actions)
}

// Два актора одновременно переводят одну бронь: победить должен ровно
// один, проигравший получает ErrInvalidTransition, а не тихую перезапись.
func TestTransition_ConcurrentLoserGetsInvalidTransition(t *testing.T) {
	const attempts = 8

	repo := newFakeReservationRepo(reservationIn(domain.StatusPending))
	audit := &fakeAuditRecorder{}
	svc := newTestService(repo, audit, trStart.Add(-time.Hour))

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transition(context.Background(), 1, "confirmed", staff)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, audit.actions, 1)
}

func TestGetByID_AccessRules(t *testing.T) {
	repo := newFakeReservationRepo(reservationIn(domain.StatusPending))
	svc := newTestService(repo, &fakeAuditRecorder{}, trStart)

	// владелец видит свою бронь
	resp, err := svc.GetByID(context.Background(), 1, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	// менеджерская роль видит любую
	_, err = svc.GetByID(context.Background(), 1, staff)
	require.NoError(t, err)

	// чужой клиент — нет
	other := domain.Actor{ID: 999, Role: domain.RoleCustomer}
	_, err = svc.GetByID(context.Background(), 1, other)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestList_CustomerScopedToOwnReservations(t *testing.T) {
	mine := reservationIn(domain.StatusPending)
	foreign := reservationIn(domain.StatusPending)
	foreign.ID = 2
	foreign.UserID = 999

	repo := newFakeReservationRepo(mine, foreign)
	svc := newTestService(repo, &fakeAuditRecorder{}, trStart)

	// клиент получает только свои брони, даже если фильтр шире
	resp, err := svc.List(context.Background(), &models.ListReservationsRequest{}, customer)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, customer.ID, resp.Reservations[0].UserID)

	// менеджер видит всё
	resp, err = svc.List(context.Background(), &models.ListReservationsRequest{}, admin)
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 2)
}
