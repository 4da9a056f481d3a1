package reservations

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// checkTransition валидирует один шаг машины состояний брони.
// Возвращает тег действия для журнала изменений либо ErrInvalidTransition.
//
// Правила (начальное состояние pending):
//   - pending -> confirmed: только до start_at;
//   - pending|confirmed -> canceled: до start_at кем угодно, после start_at
//     только staff/owner/admin (поздняя отмена);
//   - confirmed -> completed: только начиная с end_at;
//   - confirmed -> no_show: начиная с start_at и только staff/owner/admin;
//   - completed, canceled, no_show терминальны: любой переход из них запрещен.
func checkTransition(
	res *domain.Reservation,
	target domain.ReservationStatus,
	actor domain.Actor,
	now time.Time,
) (domain.ChangeLogAction, error) {
	if res.IsTerminal() {
		return "", ErrInvalidTransition
	}

	switch {
	case res.Status == domain.StatusPending && target == domain.StatusConfirmed:
		if now.Before(res.StartAt) {
			return domain.ActionConfirm, nil
		}

	case (res.Status == domain.StatusPending || res.Status == domain.StatusConfirmed) &&
		target == domain.StatusCanceled:
		if now.Before(res.StartAt) || actor.CanManageReservations() {
			return domain.ActionCancel, nil
		}

	case res.Status == domain.StatusConfirmed && target == domain.StatusCompleted:
		if !now.Before(res.EndAt) {
			return domain.ActionComplete, nil
		}

	case res.Status == domain.StatusConfirmed && target == domain.StatusNoShow:
		if !now.Before(res.StartAt) && actor.CanManageReservations() {
			return domain.ActionNoShow, nil
		}
	}

	return "", ErrInvalidTransition
}
