package account

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanArchive_NonZeroBalanceRejectedBeforeAnyWrite(t *testing.T) {
	a := &Account{Role: RoleStandard, State: StateApproved, Balance: decimal.RequireFromString("12.50")}
	if err := CanArchive(a); err != ErrNonZeroBalance {
		t.Fatalf("expected ErrNonZeroBalance, got %v", err)
	}
}

func TestCanArchive_AdminProtected(t *testing.T) {
	a := &Account{Role: RoleAdmin, State: StateApproved, Balance: decimal.Zero}
	if err := CanArchive(a); err != ErrAdminProtected {
		t.Fatalf("expected ErrAdminProtected, got %v", err)
	}
}

func TestCanArchive_ApprovedZeroBalanceStandardAllowed(t *testing.T) {
	a := &Account{Role: RoleStandard, State: StateApproved, Balance: decimal.Zero}
	if err := CanArchive(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanArchive_PendingAccountBlocked(t *testing.T) {
	a := &Account{Role: RoleStandard, State: StatePending, Balance: decimal.Zero}
	if err := CanArchive(a); err != ErrNotApproved {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
}

func TestApproveRejectOnlyFromPending(t *testing.T) {
	pending := &Account{State: StatePending}
	approved := &Account{State: StateApproved}

	if err := CanApprove(pending); err != nil {
		t.Fatalf("approve pending: %v", err)
	}
	if err := CanReject(pending); err != nil {
		t.Fatalf("reject pending: %v", err)
	}
	if err := CanApprove(approved); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if err := CanReject(approved); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestCanRestore_OnlyFromArchived(t *testing.T) {
	if err := CanRestore(&Account{State: StateArchived}); err != nil {
		t.Fatalf("restore archived: %v", err)
	}
	if err := CanRestore(&Account{State: StateApproved}); err != ErrNotArchived {
		t.Fatalf("expected ErrNotArchived, got %v", err)
	}
}
