package domain

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/pkg/types"
)

// Salon represents a bookable salon
type Salon struct {
	ID          int64
	Name        string
	Phone       *string
	Description *string
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SalonStaff represents a staff member attached to a salon.
// A reservation either pins one staff member or, when the salon has
// no roster at all, carries no staff.
type SalonStaff struct {
	ID          int64
	SalonID     int64
	UserID      int64
	DisplayName *string
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service represents a bookable salon service (menu item)
type Service struct {
	ID          int64
	SalonID     int64
	Name        string
	Description *string
	DurationMin int   // always > 0
	PriceJPY    int64 // always >= 0, pricing basis for the coupon resolver
	IsActive    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkingHour represents the recurring opening window of a salon
// on one weekday (0=Sunday .. 6=Saturday, time.Weekday numbering).
type WorkingHour struct {
	ID       int64
	SalonID  int64
	Weekday  int
	Start    types.TimeString
	End      types.TimeString
	IsClosed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlackoutDate removes availability on one calendar date.
// With nil Start/End the whole day is unavailable, otherwise only
// the [Start, End) sub-interval.
type BlackoutDate struct {
	ID      int64
	SalonID int64
	Date    time.Time // date only, midnight in salon local time
	Start   *types.TimeString
	End     *types.TimeString
	Reason  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFullDay returns true if the blackout covers the entire date
func (b *BlackoutDate) IsFullDay() bool {
	return b.Start == nil || b.End == nil
}
