package restriction

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Load reads the full rule set. The editor loads it on open and the
// evaluator loads it per validation; nothing is cached across requests.
func (r *Repository) Load(ctx context.Context) (*RuleSet, error) {
	const q = `
SELECT kind, from_date, to_date, year, month, weekday
FROM date_restrictions
ORDER BY id ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var set RuleSet
	for rows.Next() {
		var (
			kind     string
			from, to *time.Time
			year, mo *int
			weekday  *int
		)
		if err := rows.Scan(&kind, &from, &to, &year, &mo, &weekday); err != nil {
			return nil, err
		}
		switch kind {
		case "range":
			if from != nil && to != nil {
				set.Ranges = append(set.Ranges, DateRange{From: dateOnly(*from), To: dateOnly(*to)})
			}
		case "month":
			if year != nil && mo != nil {
				set.Months = append(set.Months, Month{Year: *year, Month: time.Month(*mo)})
			}
		case "weekday":
			if weekday != nil {
				set.Weekdays = append(set.Weekdays, time.Weekday(*weekday))
			}
		}
	}
	return &set, rows.Err()
}

// Replace persists the submitted rule set wholesale. The editor submits the
// complete set, so the previous rows are dropped in the same transaction.
func Replace(ctx context.Context, tx pgx.Tx, set *RuleSet) error {
	if _, err := tx.Exec(ctx, `DELETE FROM date_restrictions`); err != nil {
		return err
	}

	const qRange = `INSERT INTO date_restrictions (kind, from_date, to_date) VALUES ('range', $1, $2)`
	for _, rg := range set.Ranges {
		if _, err := tx.Exec(ctx, qRange, rg.From, rg.To); err != nil {
			return err
		}
	}

	const qMonth = `INSERT INTO date_restrictions (kind, year, month) VALUES ('month', $1, $2)`
	for _, m := range set.Months {
		if _, err := tx.Exec(ctx, qMonth, m.Year, int(m.Month)); err != nil {
			return err
		}
	}

	const qWeekday = `INSERT INTO date_restrictions (kind, weekday) VALUES ('weekday', $1)`
	for _, w := range set.Weekdays {
		if _, err := tx.Exec(ctx, qWeekday, int(w)); err != nil {
			return err
		}
	}
	return nil
}
