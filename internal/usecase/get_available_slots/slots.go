package get_available_slots

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
	"github.com/aokiyama/SLB-ReservationService/pkg/types"
)

// generateCandidates генерирует кандидатов начала слота внутри открытых
// интервалов: от начала каждого интервала с шагом stepMinutes, пока слот
// длительностью durationMinutes целиком помещается в интервал.
// Для сегодняшней даты слоты раньше now отбрасываются.
func generateCandidates(
	intervals []domain.Interval,
	durationMinutes int,
	stepMinutes int,
	requestDate time.Time,
	now time.Time,
) []types.TimeString {
	candidates := make([]types.TimeString, 0)

	for _, interval := range intervals {
		for startMin := interval.Start.Minutes(); startMin+durationMinutes <= interval.End.Minutes(); startMin += stepMinutes {
			start := minutesToTimeString(startMin)
			if isSameDay(requestDate, now) && start.At(requestDate).Before(now) {
				continue
			}
			candidates = append(candidates, start)
		}
	}

	return candidates
}

// filterByStaffAvailability оставляет кандидатов, для которых найдется
// свободный мастер.
//
// Правила:
//   - requestedStaff задан: слот доступен, если у этого мастера нет
//     пересекающейся активной брони;
//   - requestedStaff nil и в салоне есть мастера: слот доступен, пока хотя бы
//     один активный мастер свободен в этом окне;
//   - в салоне вообще нет мастеров: доступен любой слот открытого интервала.
func filterByStaffAvailability(
	candidates []types.TimeString,
	durationMinutes int,
	requestDate time.Time,
	requestedStaff *int64,
	staff []*domain.SalonStaff,
	reservations []*domain.Reservation,
) []types.TimeString {
	available := make([]types.TimeString, 0, len(candidates))

	for _, start := range candidates {
		slotStart := start.At(requestDate)
		slotEnd := slotStart.Add(time.Duration(durationMinutes) * time.Minute)

		if requestedStaff != nil {
			if staffFree(*requestedStaff, slotStart, slotEnd, reservations) {
				available = append(available, start)
			}
			continue
		}

		if len(staff) == 0 {
			available = append(available, start)
			continue
		}

		for _, member := range staff {
			if staffFree(member.ID, slotStart, slotEnd, reservations) {
				available = append(available, start)
				break
			}
		}
	}

	return available
}

// staffFree проверяет, что у мастера нет активной брони, пересекающей
// окно [start, end). Граничное касание пересечением не считается.
func staffFree(staffID int64, start, end time.Time, reservations []*domain.Reservation) bool {
	for _, res := range reservations {
		if !res.IsActive() {
			continue
		}
		if res.StaffID == nil || *res.StaffID != staffID {
			continue
		}
		if res.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// minutesToTimeString конвертирует минуты с начала суток в "HH:MM"
func minutesToTimeString(minutes int) types.TimeString {
	t, _ := types.TimeString("00:00").AddMinutes(minutes)
	return t
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}

// dayBounds возвращает границы суток даты [начало, начало следующего дня)
func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}
