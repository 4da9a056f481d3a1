// Package changelog append-only журнал изменений броней.
// Запись журнала — best-effort: ошибки логируются вызывающей стороной
// и никогда не проваливают породившую операцию.
package changelog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/pkg/dbmetrics"
	"github.com/aokiyama/SLB-ReservationService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий журнала изменений броней
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал.
// Намеренно игнорирует транзакцию в контексте: журнал пишется после
// коммита основной операции, чтобы его сбой не откатил бронь.
func (r *Repository) Append(ctx context.Context, entry *domain.ReservationChangeLog) error {
	query, args, err := psqlbuilder.Insert("reservation_change_logs").
		Columns(
			"reservation_id",
			"actor_id",
			"action",
			"detail",
		).
		Values(
			entry.ReservationID,
			entry.ActorID,
			entry.Action,
			entry.Detail,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListByReservation получает журнал изменений одной брони в порядке записи
func (r *Repository) ListByReservation(ctx context.Context, reservationID int64) ([]*domain.ReservationChangeLog, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"reservation_id",
		"actor_id",
		"action",
		"detail",
		"created_at",
	).
		From("reservation_change_logs").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.ReservationChangeLog, 0)
	for rows.Next() {
		var entry domain.ReservationChangeLog
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.ReservationID,
			&entry.ActorID,
			&entry.Action,
			&entry.Detail,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
