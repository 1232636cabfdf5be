// Package upload stores multipart file uploads (payment proofs, menu images,
// QR codes, profile photos) on disk and records them in Postgres.
package upload

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Record struct {
	ID         string    `json:"id"`
	UploadedBy string    `json:"uploadedBy"`
	FileURL    string    `json:"fileUrl"`
	Kind       string    `json:"kind"` // proof | menu | qr | photo
	CreatedAt  time.Time `json:"createdAt"`
}

func normalizeKind(k string) string {
	k = strings.TrimSpace(strings.ToLower(k))
	switch k {
	case "proof", "menu", "qr", "photo":
		return k
	default:
		return "proof"
	}
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, uploadedBy, fileURL, kind string) (*Record, error) {
	const q = `
INSERT INTO uploads (uploaded_by, file_url, kind)
VALUES ($1, $2, $3)
RETURNING id, uploaded_by, file_url, kind, created_at
`
	var rec Record
	if err := r.db.QueryRow(ctx, q, uploadedBy, fileURL, normalizeKind(kind)).Scan(
		&rec.ID, &rec.UploadedBy, &rec.FileURL, &rec.Kind, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) ListByUploader(ctx context.Context, uploadedBy string) ([]Record, error) {
	const q = `
SELECT id, uploaded_by, file_url, kind, created_at
FROM uploads
WHERE uploaded_by = $1
ORDER BY created_at ASC
`
	rows, err := r.db.Query(ctx, q, uploadedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UploadedBy, &rec.FileURL, &rec.Kind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
