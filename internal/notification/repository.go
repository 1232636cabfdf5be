package notification

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, accountID *string, title, body string, data *Data) (*Notification, error) {
	var payload *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		s := string(b)
		payload = &s
	}
	const q = `
INSERT INTO notifications (account_id, title, body, data)
VALUES ($1, $2, NULLIF($3,''), CAST($4 AS jsonb))
RETURNING id, account_id, title, COALESCE(body,''), read, data, created_at
`
	return scanNotification(r.db.QueryRow(ctx, q, accountID, title, body, payload))
}

// InsertTx writes a notification inside the caller's transaction so the
// inbox entry commits atomically with the status change that caused it.
func InsertTx(ctx context.Context, tx pgx.Tx, accountID *string, title, body string, data *Data) error {
	var payload *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		s := string(b)
		payload = &s
	}
	const q = `
INSERT INTO notifications (account_id, title, body, data)
VALUES ($1, $2, NULLIF($3,''), CAST($4 AS jsonb))
`
	_, err := tx.Exec(ctx, q, accountID, title, body, payload)
	return err
}

// Every read and write below is scoped to the caller: an account sees and
// touches only its own rows, plus the shared (account-less) ones when
// includeShared is set. Only admin identities get includeShared.

// ListInbox returns the caller's notifications, newest first.
func (r *Repository) ListInbox(ctx context.Context, accountID string, includeShared bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
SELECT id, account_id, title, COALESCE(body,''), read, data, created_at
FROM notifications
WHERE account_id = $1 OR ($2 AND account_id IS NULL)
ORDER BY created_at DESC
LIMIT $3
`
	rows, err := r.db.Query(ctx, q, accountID, includeShared, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, ids []string, accountID string, includeShared bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `
UPDATE notifications SET read = TRUE
WHERE id = ANY($1) AND (account_id = $2 OR ($3 AND account_id IS NULL))
`
	ct, err := r.db.Exec(ctx, q, ids, accountID, includeShared)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) MarkAllRead(ctx context.Context, accountID string, includeShared bool) (int64, error) {
	const q = `
UPDATE notifications SET read = TRUE
WHERE (account_id = $1 OR ($2 AND account_id IS NULL)) AND NOT read
`
	ct, err := r.db.Exec(ctx, q, accountID, includeShared)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) Delete(ctx context.Context, id, accountID string, includeShared bool) error {
	const q = `
DELETE FROM notifications
WHERE id = $1 AND (account_id = $2 OR ($3 AND account_id IS NULL))
`
	ct, err := r.db.Exec(ctx, q, id, accountID, includeShared)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) CountUnread(ctx context.Context, accountID string, includeShared bool) (int, error) {
	const q = `
SELECT COUNT(*) FROM notifications
WHERE (account_id = $1 OR ($2 AND account_id IS NULL)) AND NOT read
`
	var n int
	err := r.db.QueryRow(ctx, q, accountID, includeShared).Scan(&n)
	return n, err
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var payload *string
	if err := row.Scan(&n.ID, &n.AccountID, &n.Title, &n.Body, &n.Read, &payload, &n.CreatedAt); err != nil {
		return nil, err
	}
	if payload != nil {
		var d Data
		if err := json.Unmarshal([]byte(*payload), &d); err == nil {
			n.Data = &d
		}
	}
	return &n, nil
}
