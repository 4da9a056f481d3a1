package get_available_slots

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	SalonID   int64     // ID салона
	ServiceID int64     // ID услуги
	StaffID   *int64    // ID мастера (опционально; nil = любой свободный мастер)
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date      time.Time // Дата, на которую запрашивались слоты
	SalonID   int64     // ID салона
	ServiceID int64     // ID услуги
	StaffID   *int64    // ID мастера из запроса
	Slots     []Slot    // Список доступных слотов
}

// Slot модель временного слота
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	DurationMinutes int              // Длительность слота в минутах
}
