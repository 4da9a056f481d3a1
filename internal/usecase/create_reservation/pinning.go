package create_reservation

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// pickStaff детерминированно закрепляет мастера за бронью, когда клиент
// не указал его сам. Среди активных мастеров, свободных в окне [start, end),
// выбирается тот, у кого меньше всего активных броней в этот день;
// при равенстве — с меньшим ID. Возвращает nil, если свободных нет.
//
// Список staff должен быть упорядочен по ID по возрастанию: тогда строгое
// сравнение "меньше" сохраняет мастера с меньшим ID при равной загрузке.
func pickStaff(
	staff []*domain.SalonStaff,
	reservations []*domain.Reservation,
	start, end time.Time,
) *domain.SalonStaff {
	var (
		best     *domain.SalonStaff
		bestLoad int
	)

	for _, member := range staff {
		if !staffFree(member.ID, start, end, reservations) {
			continue
		}
		load := dayLoad(member.ID, reservations)
		if best == nil || load < bestLoad {
			best = member
			bestLoad = load
		}
	}

	return best
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

// dayLoad считает активные брони мастера в переданном дневном окне
func dayLoad(staffID int64, reservations []*domain.Reservation) int {
	load := 0
	for _, res := range reservations {
		if !res.IsActive() {
			continue
		}
		if res.StaffID != nil && *res.StaffID == staffID {
			load++
		}
	}
	return load
}
