package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canteenadmin/internal/status"
)

var ErrNotFound = errors.New("reservation not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const reservationColumns = `
id, display_id, account_id, claim_date, status, COALESCE(note,''), items, created_at, updated_at`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	var items []byte
	if err := row.Scan(
		&res.ID, &res.DisplayID, &res.AccountID, &res.ClaimDate, &res.RawStatus, &res.Note,
		&items, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &res.Items); err != nil {
			return nil, err
		}
	}
	// Raw status is backend-controlled free text; canonicalize on every read.
	res.Status = status.Reservations.Normalize(res.RawStatus)
	res.Total = Total(res.Items).StringFixed(2)
	return &res, nil
}

func (r *Repository) Create(ctx context.Context, accountID string, claimDate time.Time, items []LineItem) (*Reservation, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO reservations (account_id, claim_date, status, items)
VALUES ($1, $2, 'pending', CAST($3 AS jsonb))
RETURNING ` + reservationColumns
	return scanReservation(r.db.QueryRow(ctx, q, accountID, claimDate, payload))
}

func (r *Repository) List(ctx context.Context) ([]Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *Repository) ListByAccount(ctx context.Context, accountID string) ([]Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE account_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.db.QueryRow(ctx, q, id))
}

// CountPending counts over normalized statuses, not the raw column, so a row
// stored as "new" is pending here exactly as it is in the list view.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, `SELECT status FROM reservations`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var raws []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return status.Reservations.CountMatching(raws, status.StatusPending), nil
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return scanReservation(tx.QueryRow(ctx, q, id))
}

func UpdateStatus(ctx context.Context, tx pgx.Tx, id string, next status.Status, note string) error {
	const q = `
UPDATE reservations
SET status = $1, note = COALESCE(NULLIF($2,''), note), updated_at = NOW()
WHERE id = $3
`
	_, err := tx.Exec(ctx, q, string(next), note, id)
	return err
}
