package domain

import "time"

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCanceled  ReservationStatus = "canceled"
	StatusNoShow    ReservationStatus = "no_show"
)

// PaymentStatus represents the payment state of a reservation.
// The scheduling core stores it but never drives it; payment capture
// is handled by an external collaborator.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Reservation represents a booked time slot at a salon
type Reservation struct {
	ID            int64
	UserID        int64
	SalonID       int64
	ServiceID     int64
	StaffID       *int64 // nil only when the salon has no staff roster
	StartAt       time.Time
	EndAt         time.Time // always StartAt + service duration
	Status        ReservationStatus
	PaymentStatus PaymentStatus
	AmountJPY     *int64 // final charged amount, set by the coupon resolver
	Note          *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation still occupies its time slot
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCanceled && r.Status != StatusNoShow
}

// IsTerminal returns true if the reservation reached a final state
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCanceled || r.Status == StatusNoShow
}

// Overlaps reports whether the reservation interval intersects [start, end).
// Touching boundaries do not count as an overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartAt.Before(end) && r.EndAt.After(start)
}

// ReservationsFilter narrows down ListReservations results.
// All fields are optional; nil means "no restriction".
type ReservationsFilter struct {
	UserID          *int64
	SalonID         *int64
	StaffID         *int64
	DateFrom        *time.Time // inclusive, compared against start_at
	DateTo          *time.Time // exclusive
	IncludeInactive bool       // include canceled and no_show rows
}

// InactiveStatuses lists statuses that free up the reserved time slot
var InactiveStatuses = []ReservationStatus{
	StatusCanceled,
	StatusNoShow,
}

// ValidStatuses lists every recognized reservation status
var ValidStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCanceled,
	StatusNoShow,
}

// ParseReservationStatus validates and converts a raw status string
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	status := ReservationStatus(s)
	for _, valid := range ValidStatuses {
		if status == valid {
			return status, true
		}
	}
	return "", false
}
