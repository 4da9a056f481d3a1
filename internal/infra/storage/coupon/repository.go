package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/pkg/dbmetrics"
	"github.com/aokiyama/SLB-ReservationService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL для нарушения уникального индекса
const pgUniqueViolation = "23505"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// couponColumns список колонок таблицы coupons для SELECT
var couponColumns = []string{
	"id",
	"code",
	"name",
	"description",
	"type",
	"value",
	"scope",
	"salon_id",
	"service_id",
	"use_limit",
	"starts_at",
	"ends_at",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с купонами и их погашениями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория купонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает купон по коду.
// Внутри транзакции строка купона блокируется через FOR UPDATE — это
// сериализует конкурентные погашения одного купона, и подсчет использований
// под лимитом становится атомарным.
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(couponColumns...).
		From("coupons").
		Where(squirrel.Eq{"code": code})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	coupon, err := scanCoupon(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan coupon: %v", ErrScanRow, err)
	}

	return coupon, nil
}

// ListEligible получает активные купоны, чья область действия покрывает
// пару салон/услуга и чье окно действия открыто на момент now.
// Сортировка по коду делает выбор "лучшего купона" детерминированным.
// Внутри транзакции строки блокируются через FOR UPDATE.
func (r *Repository) ListEligible(ctx context.Context, salonID, serviceID int64, now time.Time) ([]*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(couponColumns...).
		From("coupons").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"scope": domain.ScopeGlobal},
			squirrel.And{squirrel.Eq{"scope": domain.ScopeSalon}, squirrel.Eq{"salon_id": salonID}},
			squirrel.And{squirrel.Eq{"scope": domain.ScopeService}, squirrel.Eq{"service_id": serviceID}},
		}).
		Where(squirrel.Or{squirrel.Eq{"starts_at": nil}, squirrel.LtOrEq{"starts_at": now}}).
		Where(squirrel.Or{squirrel.Eq{"ends_at": nil}, squirrel.GtOrEq{"ends_at": now}}).
		OrderBy("code ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEligible - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEligible - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	coupons := make([]*domain.Coupon, 0)
	for rows.Next() {
		coupon, err := scanCouponRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListEligible - scan row: %v", ErrScanRow, err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEligible - rows error: %v", ErrScanRow, err)
	}

	return coupons, nil
}

// ListActive получает все активные купоны с открытым окном действия
// (публичная витрина купонов)
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(couponColumns...).
		From("coupons").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{squirrel.Eq{"starts_at": nil}, squirrel.LtOrEq{"starts_at": now}}).
		Where(squirrel.Or{squirrel.Eq{"ends_at": nil}, squirrel.GtOrEq{"ends_at": now}}).
		OrderBy("code ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	coupons := make([]*domain.Coupon, 0)
	for rows.Next() {
		coupon, err := scanCouponRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %v", ErrScanRow, err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %v", ErrScanRow, err)
	}

	return coupons, nil
}

// CountRedemptions подсчитывает погашения купона по всем пользователям.
// Вызывается после блокировки строки купона (GetByCode/ListEligible в
// транзакции), поэтому результат стабилен до конца транзакции.
func (r *Repository) CountRedemptions(ctx context.Context, couponID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("coupon_redemptions").
		Where(squirrel.Eq{"coupon_id": couponID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountRedemptions - build select query: %v", ErrBuildQuery, err)
	}

	var count int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountRedemptions - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetRedemptionByReservation получает погашение, привязанное к брони
func (r *Repository) GetRedemptionByReservation(ctx context.Context, reservationID int64) (*domain.CouponRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"coupon_id",
		"user_id",
		"reservation_id",
		"used_at",
	).
		From("coupon_redemptions").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRedemptionByReservation - build select query: %v", ErrBuildQuery, err)
	}

	var redemption domain.CouponRedemption
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&redemption.ID,
		&redemption.CouponID,
		&redemption.UserID,
		&redemption.ReservationID,
		&redemption.UsedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRedemptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRedemptionByReservation - scan redemption: %v", ErrScanRow, err)
	}

	return &redemption, nil
}

// CreateRedemption создает запись о погашении купона.
// Уникальный индекс по reservation_id гарантирует не больше одного
// погашения на бронь; его нарушение конвертируется в ErrRedemptionExists.
func (r *Repository) CreateRedemption(ctx context.Context, redemption *domain.CouponRedemption) (*domain.CouponRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("coupon_redemptions").
		Columns(
			"coupon_id",
			"user_id",
			"reservation_id",
		).
		Values(
			redemption.CouponID,
			redemption.UserID,
			redemption.ReservationID,
		).
		Suffix("RETURNING id, used_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateRedemption - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&redemption.ID,
		&redemption.UsedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrRedemptionExists
		}
		return nil, fmt.Errorf("%w: CreateRedemption - execute insert: %v", ErrExecQuery, err)
	}

	return redemption, nil
}

// Helpers

func scanCoupon(row *sql.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.Type,
		&c.Value,
		&c.Scope,
		&c.SalonID,
		&c.ServiceID,
		&c.UseLimit,
		&c.StartsAt,
		&c.EndsAt,
		&c.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

func scanCouponRow(rows *sql.Rows) (*domain.Coupon, error) {
	var c domain.Coupon
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&c.Type,
		&c.Value,
		&c.Scope,
		&c.SalonID,
		&c.ServiceID,
		&c.UseLimit,
		&c.StartsAt,
		&c.EndsAt,
		&c.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}
