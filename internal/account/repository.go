package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID           string          `json:"id"`
	DisplayID    string          `json:"displayId"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Role         Role            `json:"role"`
	State        State           `json:"state"`
	Balance      decimal.Decimal `json:"balance"`
	PhotoURL     string          `json:"photoUrl,omitempty"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const accountColumns = `
id, display_id, name, email, COALESCE(phone,''), role, state, balance::text,
COALESCE(photo_url,''), password_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var balance string
	if err := row.Scan(
		&a.ID, &a.DisplayID, &a.Name, &a.Email, &a.Phone, &a.Role, &a.State, &balance,
		&a.PhotoURL, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, name, email, phone, passwordHash string, role Role) (*Account, error) {
	const q = `
INSERT INTO accounts (name, email, phone, role, state, password_hash)
VALUES ($1, $2, NULLIF($3,''), $4, 'pending', $5)
RETURNING ` + accountColumns
	a, err := scanAccount(r.db.QueryRow(ctx, q, name, email, phone, string(role), passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

func (r *Repository) List(ctx context.Context, states ...State) ([]Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any
	if len(states) > 0 {
		q += ` WHERE state = ANY($1)`
		ss := make([]string, 0, len(states))
		for _, s := range states {
			ss = append(ss, string(s))
		}
		args = append(args, ss)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return scanAccount(r.db.QueryRow(ctx, q, email))
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE state = 'pending'`).Scan(&n)
	return n, err
}

func (r *Repository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = 'admin'`).Scan(&n)
	return n, err
}

// EnsureAdmin inserts an approved admin account. The caller checks
// CountAdmins first; a concurrent insert of the same email still fails with
// ErrEmailTaken.
func (r *Repository) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (*Account, error) {
	const q = `
INSERT INTO accounts (name, email, role, state, password_hash)
VALUES ($1, $2, 'admin', 'approved', $3)
RETURNING ` + accountColumns
	a, err := scanAccount(r.db.QueryRow(ctx, q, name, email, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(tx.QueryRow(ctx, q, id))
}

func UpdateState(ctx context.Context, tx pgx.Tx, id string, next State) error {
	const q = `UPDATE accounts SET state = $1, updated_at = NOW() WHERE id = $2`
	_, err := tx.Exec(ctx, q, string(next), id)
	return err
}

// DeletePending permanently removes a rejected registration.
func DeletePending(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `DELETE FROM accounts WHERE id = $1 AND state = 'pending'`
	ct, err := tx.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

// CreditBalance adds the approved top-up amount to the wallet.
func CreditBalance(ctx context.Context, tx pgx.Tx, id string, amount decimal.Decimal) error {
	const q = `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
	ct, err := tx.Exec(ctx, q, amount, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitBalance charges the wallet for a claimed order or reservation.
func DebitBalance(ctx context.Context, tx pgx.Tx, id string, amount decimal.Decimal) error {
	const q = `UPDATE accounts SET balance = balance - $1, updated_at = NOW() WHERE id = $2 AND balance >= $1`
	ct, err := tx.Exec(ctx, q, amount, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func UpdateProfile(ctx context.Context, tx pgx.Tx, id string, name, phone, photoURL string) error {
	const q = `
UPDATE accounts
SET name = COALESCE(NULLIF($1,''), name),
    phone = COALESCE(NULLIF($2,''), phone),
    photo_url = COALESCE(NULLIF($3,''), photo_url),
    updated_at = NOW()
WHERE id = $4
`
	_, err := tx.Exec(ctx, q, name, phone, photoURL, id)
	return err
}
