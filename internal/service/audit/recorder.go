// Package audit журнал аудита броней.
// Каждая мутация брони порождает одну запись. Запись — fire-and-forget:
// сбой журнала логируется и никогда не поднимается до вызывающей операции,
// корректность брони не зависит от аудита.
package audit

import (
	"context"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// Recorder пишет записи аудита поверх репозитория журнала
type Recorder struct {
	repo   ChangeLogRepository
	logger Logger
}

// NewRecorder создает новый recorder аудита
func NewRecorder(repo ChangeLogRepository, logger Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record добавляет запись аудита. Ошибки проглатываются и только логируются.
func (r *Recorder) Record(ctx context.Context, reservationID int64, actorID *int64, action domain.ChangeLogAction, detail string) {
	entry := &domain.ReservationChangeLog{
		ReservationID: reservationID,
		ActorID:       actorID,
		Action:        action,
	}
	if detail != "" {
		entry.Detail = &detail
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("audit: failed to record %s for reservation id=%d: %v", action, reservationID, err)
	}
}

// History возвращает журнал изменений одной брони
func (r *Recorder) History(ctx context.Context, reservationID int64) ([]*domain.ReservationChangeLog, error) {
	return r.repo.ListByReservation(ctx, reservationID)
}
