package status

import "testing"

func TestNormalize_SynonymsAnyCaseAndWhitespace(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"PICKED_UP", StatusClaimed},
		{"  picked-up ", StatusClaimed},
		{"Approve", StatusApproved},
		{"DECLINED", StatusRejected},
		{"cancelled", StatusRejected},
		{"\tpending\n", StatusPending},
	}
	for _, c := range cases {
		if got := Reservations.Normalize(c.raw); got != c.want {
			t.Fatalf("Normalize(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestNormalize_EmptyInputUsesFamilyDefault(t *testing.T) {
	if got := Reservations.Normalize(""); got != StatusPending {
		t.Fatalf("empty reservation status = %s, want Pending", got)
	}
	if got := Orders.Normalize("   "); got != StatusPending {
		t.Fatalf("blank order status = %s, want Pending", got)
	}
}

func TestNormalize_UnmatchedFallsThrough(t *testing.T) {
	if got := Reservations.Normalize("garbage-value"); got != StatusUnknown {
		t.Fatalf("unmatched reservation status = %s, want Unknown", got)
	}
	if got := Orders.Normalize("???"); got != StatusUnknown {
		t.Fatalf("unmatched order status = %s, want Unknown", got)
	}
	// Top-ups have no Unknown; unrecognized means still pending review.
	if got := TopUps.Normalize("whatever"); got != StatusPending {
		t.Fatalf("unmatched topup status = %s, want Pending", got)
	}
}

func TestNormalize_OrderKitchenStates(t *testing.T) {
	if got := Orders.Normalize("IN_PROGRESS"); got != StatusPreparing {
		t.Fatalf("expected Preparing, got %s", got)
	}
	if got := Orders.Normalize("for_pickup"); got != StatusReady {
		t.Fatalf("expected Ready, got %s", got)
	}
	// Kitchen states are not part of the reservation table.
	if got := Reservations.Normalize("preparing"); got != StatusUnknown {
		t.Fatalf("expected Unknown for reservation 'preparing', got %s", got)
	}
}

func TestCanTransition_ReservationsOnlyLeavePending(t *testing.T) {
	if !Reservations.CanTransition(StatusPending, StatusApproved) {
		t.Fatalf("Pending -> Approved must be allowed")
	}
	if !Reservations.CanTransition(StatusPending, StatusRejected) {
		t.Fatalf("Pending -> Rejected must be allowed")
	}
	if Reservations.CanTransition(StatusApproved, StatusRejected) {
		t.Fatalf("Approved -> Rejected must be blocked")
	}
	if Reservations.CanTransition(StatusClaimed, StatusApproved) {
		t.Fatalf("Claimed is terminal")
	}
	if Reservations.CanTransition(StatusUnknown, StatusApproved) {
		t.Fatalf("Unknown has no outgoing transitions")
	}
}

func TestCanTransition_OrderChain(t *testing.T) {
	chain := []Status{StatusPending, StatusApproved, StatusPreparing, StatusReady, StatusClaimed}
	for i := 0; i < len(chain)-1; i++ {
		if !Orders.CanTransition(chain[i], chain[i+1]) {
			t.Fatalf("%s -> %s must be allowed", chain[i], chain[i+1])
		}
	}
	if Orders.CanTransition(StatusPreparing, StatusRejected) {
		t.Fatalf("Preparing -> Rejected must be blocked")
	}
}

func TestKnown(t *testing.T) {
	if !Reservations.Known("Claimed") {
		t.Fatalf("Claimed must be known")
	}
	if Reservations.Known("") || Reservations.Known("bogus") {
		t.Fatalf("empty/bogus must not be known")
	}
}

func TestCountMatching_CountsThroughSynonyms(t *testing.T) {
	// "new" and "" both normalize to Pending; a raw-column equality count
	// would miss them.
	raws := []string{"pending", "NEW", "", "approved", "bogus"}
	if got := Reservations.CountMatching(raws, StatusPending); got != 3 {
		t.Fatalf("reservation pending count = %d, want 3", got)
	}
	if got := Reservations.CountMatching(raws, StatusUnknown); got != 1 {
		t.Fatalf("reservation unknown count = %d, want 1", got)
	}
}

func TestCountMatching_TopUpMissesArePending(t *testing.T) {
	raws := []string{"pending", "garbage", "approved", "REJECTED"}
	if got := TopUps.CountMatching(raws, StatusPending); got != 2 {
		t.Fatalf("topup pending count = %d, want 2", got)
	}
}
