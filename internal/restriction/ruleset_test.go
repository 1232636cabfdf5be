package restriction

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddRange_ReversedBoundsAreSwapped(t *testing.T) {
	var s RuleSet
	s.AddRange(date(2026, 9, 20), date(2026, 9, 10))

	if len(s.Ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(s.Ranges))
	}
	r := s.Ranges[0]
	if r.From.After(r.To) {
		t.Fatalf("range stored unnormalized: from=%s to=%s", r.From, r.To)
	}
	if !r.From.Equal(date(2026, 9, 10)) || !r.To.Equal(date(2026, 9, 20)) {
		t.Fatalf("unexpected bounds: from=%s to=%s", r.From, r.To)
	}
}

func TestAddMonth_DuplicateRejected(t *testing.T) {
	var s RuleSet
	if err := s.AddMonth(2026, time.December); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddMonth(2026, time.December); err != ErrDuplicateMonth {
		t.Fatalf("expected ErrDuplicateMonth, got %v", err)
	}
	if len(s.Months) != 1 {
		t.Fatalf("expected exactly 1 stored month, got %d", len(s.Months))
	}
}

func TestIsBlocked_RangeBoundariesInclusive(t *testing.T) {
	var s RuleSet
	s.AddRange(date(2026, 9, 10), date(2026, 9, 20))

	if !s.IsBlocked(date(2026, 9, 10)) || !s.IsBlocked(date(2026, 9, 20)) {
		t.Fatalf("boundaries must be blocked")
	}
	if !s.IsBlocked(date(2026, 9, 15)) {
		t.Fatalf("date inside range must be blocked")
	}
	if s.IsBlocked(date(2026, 9, 9)) || s.IsBlocked(date(2026, 9, 21)) {
		t.Fatalf("dates one day outside range must not be blocked")
	}
}

func TestIsBlocked_MonthAndWeekday(t *testing.T) {
	var s RuleSet
	if err := s.AddMonth(2026, time.June); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddWeekday(time.Sunday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.IsBlocked(date(2026, 6, 17)) {
		t.Fatalf("any day of a blocked month must be blocked")
	}
	if s.IsBlocked(date(2025, 6, 17)) {
		t.Fatalf("same month of another year must not be blocked")
	}
	// 2026-09-06 is a Sunday.
	if !s.IsBlocked(date(2026, 9, 6)) {
		t.Fatalf("blocked weekday must be blocked")
	}
	if s.IsBlocked(date(2026, 9, 7)) {
		t.Fatalf("Monday must not be blocked")
	}
}

func TestIsBlocked_IgnoresTimeOfDay(t *testing.T) {
	var s RuleSet
	s.AddRange(date(2026, 9, 10), date(2026, 9, 10))

	at := time.Date(2026, 9, 10, 23, 59, 0, 0, time.UTC)
	if !s.IsBlocked(at) {
		t.Fatalf("time-of-day must not affect blocking")
	}
}

func TestIsBlocked_EmptyRuleSetBlocksNothing(t *testing.T) {
	var s RuleSet
	if s.IsBlocked(date(2026, 1, 1)) {
		t.Fatalf("empty rule set must block nothing")
	}
}
