// Package topup implements wallet top-up verification: students submit an
// amount with an uploaded payment proof, admins verify the proof and either
// credit the wallet or reject with a reason.
package topup

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"canteenadmin/internal/status"
)

var ErrNotFound = errors.New("top-up not found")

type TopUp struct {
	ID         string          `json:"id"`
	DisplayID  string          `json:"displayId"`
	AccountID  string          `json:"accountId"`
	Amount     decimal.Decimal `json:"amount"`
	Provider   string          `json:"provider"`
	ProofURL   string          `json:"proofUrl,omitempty"`
	RawStatus  string          `json:"-"`
	Status     status.Status   `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const topupColumns = `
id, display_id, account_id, amount::text, provider, COALESCE(proof_url,''), status,
COALESCE(reason,''), created_at, resolved_at`

func scanTopUp(row pgx.Row) (*TopUp, error) {
	var t TopUp
	var amount string
	if err := row.Scan(
		&t.ID, &t.DisplayID, &t.AccountID, &amount, &t.Provider, &t.ProofURL, &t.RawStatus,
		&t.Reason, &t.CreatedAt, &t.ResolvedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	t.Status = status.TopUps.Normalize(t.RawStatus)
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, accountID string, amount decimal.Decimal, provider, proofURL string) (*TopUp, error) {
	const q = `
INSERT INTO topups (account_id, amount, provider, proof_url, status)
VALUES ($1, $2, $3, NULLIF($4,''), 'pending')
RETURNING ` + topupColumns
	return scanTopUp(r.db.QueryRow(ctx, q, accountID, amount, provider, proofURL))
}

func (r *Repository) List(ctx context.Context) ([]TopUp, error) {
	const q = `SELECT ` + topupColumns + ` FROM topups ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopUp
	for rows.Next() {
		t, err := scanTopUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*TopUp, error) {
	const q = `SELECT ` + topupColumns + ` FROM topups WHERE id = $1`
	return scanTopUp(r.db.QueryRow(ctx, q, id))
}

// CountPending counts over normalized statuses, not the raw column; for
// top-ups that also sweeps in unrecognized values, which the family treats
// as still pending review.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, `SELECT status FROM topups`)
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
	return status.TopUps.CountMatching(raws, status.StatusPending), nil
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*TopUp, error) {
	const q = `SELECT ` + topupColumns + ` FROM topups WHERE id = $1 FOR UPDATE`
	return scanTopUp(tx.QueryRow(ctx, q, id))
}

func Resolve(ctx context.Context, tx pgx.Tx, id string, next status.Status, reason string) error {
	const q = `
UPDATE topups
SET status = $1, reason = NULLIF($2,''), resolved_at = NOW()
WHERE id = $3
`
	_, err := tx.Exec(ctx, q, string(next), reason, id)
	return err
}
