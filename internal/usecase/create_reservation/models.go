package create_reservation

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// Request модель запроса на создание брони
type Request struct {
	UserID    int64     // ID пользователя, создающего бронь
	SalonID   int64     // ID салона
	ServiceID int64     // ID услуги
	StaffID   *int64    // ID мастера (опционально; nil = подобрать автоматически)
	StartAt   time.Time // Время начала брони
	Note      *string   // Пожелание клиента (опционально)
}

// Response модель ответа с созданной бронью
type Response struct {
	Reservation *domain.Reservation
}
