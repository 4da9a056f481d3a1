package domain

import "time"

// ChangeLogAction tags one audited reservation mutation
type ChangeLogAction string

const (
	ActionCreate      ChangeLogAction = "create"
	ActionConfirm     ChangeLogAction = "confirm"
	ActionCancel      ChangeLogAction = "cancel"
	ActionComplete    ChangeLogAction = "complete"
	ActionNoShow      ChangeLogAction = "no_show"
	ActionApplyCoupon ChangeLogAction = "apply_coupon"
)

// ReservationChangeLog is one append-only audit record.
// Exactly one row is written per ledger mutation; the write is
// best-effort and never fails the mutation itself.
type ReservationChangeLog struct {
	ID            int64
	ReservationID int64
	ActorID       *int64
	Action        ChangeLogAction
	Detail        *string
	CreatedAt     time.Time
}
