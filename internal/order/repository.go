package order

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canteenadmin/internal/status"
)

var ErrNotFound = errors.New("order not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const orderColumns = `
id, display_id, account_id, status, COALESCE(note,''), items, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items []byte
	if err := row.Scan(
		&o.ID, &o.DisplayID, &o.AccountID, &o.RawStatus, &o.Note, &items, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
	}
	o.Status = status.Orders.Normalize(o.RawStatus)
	o.Total = Total(o.Items).StringFixed(2)
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, accountID string, items []LineItem) (*Order, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO orders (account_id, status, items)
VALUES ($1, 'pending', CAST($2 AS jsonb))
RETURNING ` + orderColumns
	return scanOrder(r.db.QueryRow(ctx, q, accountID, payload))
}

func (r *Repository) List(ctx context.Context) ([]Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, q, id))
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, q, id))
}

func UpdateStatus(ctx context.Context, tx pgx.Tx, id string, next status.Status, note string) error {
	const q = `
UPDATE orders
SET status = $1, note = COALESCE(NULLIF($2,''), note), updated_at = NOW()
WHERE id = $3
`
	_, err := tx.Exec(ctx, q, string(next), note, id)
	return err
}
