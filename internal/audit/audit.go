// Package audit records every status-changing admin action inside the same
// transaction as the change itself.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId,omitempty"`
	Metadata   any       `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func Insert(ctx context.Context, tx pgx.Tx, actor, action, entityKind, entityID string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (actor, action, entity_kind, entity_id, metadata)
VALUES ($1, $2, $3, NULLIF($4,''), CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, actor, action, entityKind, entityID, s)
	return err
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, actor, action, entity_kind, COALESCE(entity_id,''), metadata, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var meta *string
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityKind, &e.EntityID, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if meta != nil {
			var v any
			if err := json.Unmarshal([]byte(*meta), &v); err == nil {
				e.Metadata = v
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
