// Package restriction holds the reservation claim-date restriction rules:
// explicit date ranges, whole months, and weekdays. A candidate date is
// blocked if it matches any rule of any kind.
package restriction

import (
	"errors"
	"time"
)

var (
	ErrDuplicateMonth   = errors.New("month restriction already exists")
	ErrDuplicateWeekday = errors.New("weekday restriction already exists")
)

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// RuleSet is loaded from storage when the editor opens and saved back on
// submit; the evaluator itself keeps no other state.
type RuleSet struct {
	Ranges   []DateRange    `json:"ranges"`
	Months   []Month        `json:"months"`
	Weekdays []time.Weekday `json:"weekdays"`
}

// AddRange stores an inclusive date range. Reversed bounds are swapped before
// storage so ranges are always normalized (from <= to).
func (s *RuleSet) AddRange(from, to time.Time) {
	from, to = dateOnly(from), dateOnly(to)
	if from.After(to) {
		from, to = to, from
	}
	s.Ranges = append(s.Ranges, DateRange{From: from, To: to})
}

// AddMonth stores a whole-month rule. Duplicate (year, month) pairs are
// rejected.
func (s *RuleSet) AddMonth(year int, month time.Month) error {
	for _, m := range s.Months {
		if m.Year == year && m.Month == month {
			return ErrDuplicateMonth
		}
	}
	s.Months = append(s.Months, Month{Year: year, Month: month})
	return nil
}

// AddWeekday stores a weekday rule with set semantics.
func (s *RuleSet) AddWeekday(d time.Weekday) error {
	for _, w := range s.Weekdays {
		if w == d {
			return ErrDuplicateWeekday
		}
	}
	s.Weekdays = append(s.Weekdays, d)
	return nil
}

// IsBlocked reports whether the candidate date matches any stored rule.
// Comparison ignores the time-of-day component.
func (s *RuleSet) IsBlocked(candidate time.Time) bool {
	d := dateOnly(candidate)

	for _, r := range s.Ranges {
		if !d.Before(r.From) && !d.After(r.To) {
			return true
		}
	}
	for _, m := range s.Months {
		if d.Year() == m.Year && d.Month() == m.Month {
			return true
		}
	}
	for _, w := range s.Weekdays {
		if d.Weekday() == w {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
