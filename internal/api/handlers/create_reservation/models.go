package create_reservation

import (
	"time"

	createReservation "github.com/aokiyama/SLB-ReservationService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	SalonID   int64     `json:"salonId"`
	ServiceID int64     `json:"serviceId"`
	StaffID   *int64    `json:"staffId,omitempty"`
	StartAt   time.Time `json:"startAt"` // RFC 3339
	Note      *string   `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// ID пользователя берется из аутентифицированного актора, не из тела.
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) *createReservation.Request {
	return &createReservation.Request{
		UserID:    userID,
		SalonID:   r.SalonID,
		ServiceID: r.ServiceID,
		StaffID:   r.StaffID,
		StartAt:   r.StartAt,
		Note:      r.Note,
	}
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	SalonID       int64     `json:"salonId"`
	ServiceID     int64     `json:"serviceId"`
	StaffID       *int64    `json:"staffId,omitempty"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Note          *string   `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	res := resp.Reservation
	return &ReservationResponse{
		ID:            res.ID,
		UserID:        res.UserID,
		SalonID:       res.SalonID,
		ServiceID:     res.ServiceID,
		StaffID:       res.StaffID,
		StartAt:       res.StartAt,
		EndAt:         res.EndAt,
		Status:        string(res.Status),
		PaymentStatus: string(res.PaymentStatus),
		Note:          res.Note,
		CreatedAt:     res.CreatedAt,
	}
}
