package menu

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("menu item not found")

type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Available   bool            `json:"available"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const itemColumns = `
id, name, COALESCE(description,''), price::text, COALESCE(category,''), available,
COALESCE(image_url,''), created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	var price string
	if err := row.Scan(
		&it.ID, &it.Name, &it.Description, &price, &it.Category, &it.Available,
		&it.ImageURL, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if it.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) Insert(ctx context.Context, it *Item) (*Item, error) {
	const q = `
INSERT INTO menu_items (name, description, price, category, available, image_url)
VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), $5, NULLIF($6,''))
RETURNING ` + itemColumns
	return scanItem(r.db.QueryRow(ctx, q, it.Name, it.Description, it.Price, it.Category, it.Available, it.ImageURL))
}

func (r *Repository) Update(ctx context.Context, id string, it *Item) (*Item, error) {
	const q = `
UPDATE menu_items
SET name = $1, description = NULLIF($2,''), price = $3, category = NULLIF($4,''),
    available = $5, image_url = COALESCE(NULLIF($6,''), image_url), updated_at = NOW()
WHERE id = $7
RETURNING ` + itemColumns
	return scanItem(r.db.QueryRow(ctx, q, it.Name, it.Description, it.Price, it.Category, it.Available, it.ImageURL, id))
}

func (r *Repository) SetAvailability(ctx context.Context, id string, available bool) (*Item, error) {
	const q = `
UPDATE menu_items SET available = $1, updated_at = NOW() WHERE id = $2
RETURNING ` + itemColumns
	return scanItem(r.db.QueryRow(ctx, q, available, id))
}

func (r *Repository) List(ctx context.Context) ([]Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM menu_items ORDER BY category, name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`
	return scanItem(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
