package domain

// Role is the authenticated caller's role, supplied by the auth layer
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// Actor identifies the authenticated user performing an operation
type Actor struct {
	ID   int64
	Role Role
}

// CanManageReservations returns true for roles allowed to act on
// other users' reservations (late cancellation, no-show marking).
func (a Actor) CanManageReservations() bool {
	return a.Role == RoleStaff || a.Role == RoleOwner || a.Role == RoleAdmin
}

// ParseRole validates and converts a raw role string
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleStaff, RoleOwner, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}
