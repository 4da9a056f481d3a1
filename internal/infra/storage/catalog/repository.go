package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/pkg/dbmetrics"
	"github.com/aokiyama/SLB-ReservationService/pkg/psqlbuilder"
)

// Repository репозиторий справочных данных: салоны, услуги, мастера,
// рабочие часы и блэкауты. Для планировщика это read-mostly данные;
// мутации — административная операция (деактивация услуги).
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочника
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSalon получает салон по ID
func (r *Repository) GetSalon(ctx context.Context, id int64) (*domain.Salon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"phone",
		"description",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("salons").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSalon - build select query: %v", ErrBuildQuery, err)
	}

	var salon domain.Salon
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&salon.ID,
		&salon.Name,
		&salon.Phone,
		&salon.Description,
		&salon.IsActive,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSalonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSalon - scan salon: %v", ErrScanRow, err)
	}

	salon.CreatedAt = createdAt.Time
	salon.UpdatedAt = updatedAt.Time

	return &salon, nil
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns()...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	service, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return service, nil
}

// ListServicesBySalon получает все активные услуги салона
func (r *Repository) ListServicesBySalon(ctx context.Context, salonID int64) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns()...).
		From("services").
		Where(squirrel.Eq{"salon_id": salonID, "is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListServicesBySalon - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServicesBySalon - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		service, err := scanServiceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListServicesBySalon - scan row: %v", ErrScanRow, err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListServicesBySalon - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// DeactivateService снимает услугу с бронирования.
// Проверка ссылочной целостности (нет ли активных броней) выполняется
// сервисным слоем до вызова.
func (r *Repository) DeactivateService(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeactivateService - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeactivateService - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeactivateService - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// GetStaff получает мастера по ID
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.SalonStaff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns()...).
		From("salon_staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	staff, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %v", ErrScanRow, err)
	}

	return staff, nil
}

// ListActiveStaff получает активных мастеров салона, отсортированных по ID.
// Порядок важен: usecase создания брони использует его для детерминированного
// выбора мастера при равенстве загрузки.
func (r *Repository) ListActiveStaff(ctx context.Context, salonID int64) ([]*domain.SalonStaff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns()...).
		From("salon_staff").
		Where(squirrel.Eq{"salon_id": salonID, "is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.SalonStaff, 0)
	for rows.Next() {
		member, err := scanStaffRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveStaff - scan row: %v", ErrScanRow, err)
		}
		staff = append(staff, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - rows error: %v", ErrScanRow, err)
	}

	return staff, nil
}

// GetWorkingHour получает рабочие часы салона на день недели (0=воскресенье).
// Если строки нет, возвращает ErrWorkingHourNotFound — для планировщика
// это эквивалент выходного дня.
func (r *Repository) GetWorkingHour(ctx context.Context, salonID int64, weekday int) (*domain.WorkingHour, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"weekday",
		"start_time",
		"end_time",
		"is_closed",
		"created_at",
		"updated_at",
	).
		From("working_hours").
		Where(squirrel.Eq{"salon_id": salonID, "weekday": weekday}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHour - build select query: %v", ErrBuildQuery, err)
	}

	var wh domain.WorkingHour
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&wh.ID,
		&wh.SalonID,
		&wh.Weekday,
		&wh.Start,
		&wh.End,
		&wh.IsClosed,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrWorkingHourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHour - scan working hour: %v", ErrScanRow, err)
	}

	wh.CreatedAt = createdAt.Time
	wh.UpdatedAt = updatedAt.Time

	return &wh, nil
}

// ListBlackouts получает блэкауты салона на конкретную дату
func (r *Repository) ListBlackouts(ctx context.Context, salonID int64, date time.Time) ([]*domain.BlackoutDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"date",
		"start_time",
		"end_time",
		"reason",
		"created_at",
		"updated_at",
	).
		From("blackout_dates").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]*domain.BlackoutDate, 0)
	for rows.Next() {
		var b domain.BlackoutDate
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.SalonID,
			&b.Date,
			&b.Start,
			&b.End,
			&b.Reason,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBlackouts - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		blackouts = append(blackouts, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - rows error: %v", ErrScanRow, err)
	}

	return blackouts, nil
}

// Helpers

func serviceColumns() []string {
	return []string{
		"id",
		"salon_id",
		"name",
		"description",
		"duration_min",
		"price_jpy",
		"is_active",
		"created_at",
		"updated_at",
	}
}

func staffColumns() []string {
	return []string{
		"id",
		"salon_id",
		"user_id",
		"display_name",
		"is_active",
		"created_at",
		"updated_at",
	}
}

func scanService(row *sql.Row) (*domain.Service, error) {
	var s domain.Service
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.SalonID,
		&s.Name,
		&s.Description,
		&s.DurationMin,
		&s.PriceJPY,
		&s.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func scanServiceRow(rows *sql.Rows) (*domain.Service, error) {
	var s domain.Service
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&s.ID,
		&s.SalonID,
		&s.Name,
		&s.Description,
		&s.DurationMin,
		&s.PriceJPY,
		&s.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func scanStaff(row *sql.Row) (*domain.SalonStaff, error) {
	var s domain.SalonStaff
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.SalonID,
		&s.UserID,
		&s.DisplayName,
		&s.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func scanStaffRow(rows *sql.Rows) (*domain.SalonStaff, error) {
	var s domain.SalonStaff
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&s.ID,
		&s.SalonID,
		&s.UserID,
		&s.DisplayName,
		&s.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
