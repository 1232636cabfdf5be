package listview

import (
	"testing"
	"time"
)

type row struct {
	Name    string
	Email   string
	Balance float64
	Created time.Time
}

func sample() []row {
	return []row{
		{Name: "Carlos", Email: "carlos@school.edu", Balance: 0, Created: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "alice", Email: "alice@school.edu", Balance: 150, Created: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Bea", Email: "bea@school.edu", Balance: 0, Created: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestView_SearchIsCaseInsensitiveSubstringAcrossFields(t *testing.T) {
	rows := sample()
	got := View(rows, Query[row]{
		Search:       "ALI",
		SearchFields: []func(row) string{func(r row) string { return r.Name }, func(r row) string { return r.Email }},
	})
	if len(got) != 1 || got[0].Name != "alice" {
		t.Fatalf("expected only alice, got %+v", got)
	}

	// Match via a different field.
	got = View(rows, Query[row]{
		Search:       "bea@",
		SearchFields: []func(row) string{func(r row) string { return r.Name }, func(r row) string { return r.Email }},
	})
	if len(got) != 1 || got[0].Name != "Bea" {
		t.Fatalf("expected only Bea, got %+v", got)
	}
}

func TestView_FiltersAreANDCombined(t *testing.T) {
	rows := sample()
	zeroBalance := func(r row) bool { return r.Balance == 0 }
	nameHasA := func(r row) bool { return r.Name[0] == 'B' || r.Name[0] == 'b' }

	got := View(rows, Query[row]{Filters: []func(row) bool{zeroBalance, nameHasA}})
	if len(got) != 1 || got[0].Name != "Bea" {
		t.Fatalf("expected only Bea, got %+v", got)
	}
}

func TestView_SortStringFoldsCase(t *testing.T) {
	rows := sample()
	got := View(rows, Query[row]{SortBy: ByString(func(r row) string { return r.Name })})
	if got[0].Name != "alice" || got[1].Name != "Bea" || got[2].Name != "Carlos" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got = View(rows, Query[row]{SortBy: ByString(func(r row) string { return r.Name }), SortOrder: Descending})
	if got[0].Name != "Carlos" {
		t.Fatalf("descending sort broken: %+v", got)
	}
}

func TestView_SortNumericAndTime(t *testing.T) {
	rows := sample()
	got := View(rows, Query[row]{SortBy: ByNumber(func(r row) float64 { return r.Balance }), SortOrder: Descending})
	if got[0].Name != "alice" {
		t.Fatalf("expected alice first by balance desc, got %+v", got)
	}

	got = View(rows, Query[row]{SortBy: ByTime(func(r row) time.Time { return r.Created })})
	if got[0].Name != "alice" || got[2].Name != "Carlos" {
		t.Fatalf("expected oldest first, got %+v", got)
	}
}

func TestView_DoesNotMutateInputAndIsIdempotent(t *testing.T) {
	rows := sample()
	q := Query[row]{SortBy: ByString(func(r row) string { return r.Name }), SortOrder: Descending}

	first := View(rows, q)
	second := View(rows, q)

	if rows[0].Name != "Carlos" || rows[1].Name != "alice" || rows[2].Name != "Bea" {
		t.Fatalf("input slice was mutated: %+v", rows)
	}
	if len(first) != len(second) {
		t.Fatalf("idempotence broken: %d vs %d items", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("idempotence broken at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestView_EmptyQueryReturnsCopyInOriginalOrder(t *testing.T) {
	rows := sample()
	got := View(rows, Query[row]{})
	if len(got) != len(rows) {
		t.Fatalf("expected all rows, got %d", len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("order changed at %d", i)
		}
	}
}
