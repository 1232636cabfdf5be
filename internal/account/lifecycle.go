package account

import "errors"

type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateArchived State = "archived"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

var (
	ErrNotFound            = errors.New("account not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrNotPending          = errors.New("account is not pending")
	ErrNotApproved         = errors.New("account is not approved")
	ErrNotArchived         = errors.New("account is not archived")
	ErrNonZeroBalance      = errors.New("balance must be zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAdminProtected      = errors.New("admin accounts cannot be removed")
)

// Registration approval and rejection both act on pending accounts only.
// Rejection permanently removes the registration; archival is the separate,
// restorable transition for approved accounts.

func CanApprove(a *Account) error {
	if a.State != StatePending {
		return ErrNotPending
	}
	return nil
}

func CanReject(a *Account) error {
	if a.State != StatePending {
		return ErrNotPending
	}
	return nil
}

// CanArchive is checked before any write is attempted: an account holding
// funds or carrying the admin role can never be removed from the active list.
func CanArchive(a *Account) error {
	if a.Role == RoleAdmin {
		return ErrAdminProtected
	}
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	if a.State != StateApproved {
		return ErrNotApproved
	}
	return nil
}

func CanRestore(a *Account) error {
	if a.State != StateArchived {
		return ErrNotArchived
	}
	return nil
}
