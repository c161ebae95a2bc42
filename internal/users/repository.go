package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Repository persists user accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, email, name, role, blocked, hidden, login_count, last_login_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Blocked, &a.Hidden,
		&a.LoginCount, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Get loads one account.
func (r *Repository) Get(ctx context.Context, id int64) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id=$1`, id))
}

// List returns accounts matching the filters plus the total count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+`
FROM users
WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR role = $2)
  AND ($3 OR NOT hidden)
ORDER BY name ASC
LIMIT $4 OFFSET $5`, filters.Search, filters.Role, filters.IncludeHidden, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users
WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR role = $2)
  AND ($3 OR NOT hidden)`, filters.Search, filters.Role, filters.IncludeHidden).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Create inserts an account with its password hash.
func (r *Repository) Create(ctx context.Context, a Account, passwordHash string) (*Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `INSERT INTO users (email, name, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING `+accountColumns, a.Email, a.Name, passwordHash, a.Role))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, fmt.Errorf("%w: email %q already taken", shared.ErrValidation, a.Email)
	}
	return account, err
}

// Update rewrites the profile fields. A non-empty passwordHash replaces the
// stored hash.
func (r *Repository) Update(ctx context.Context, a Account, passwordHash string) (*Account, error) {
	if passwordHash != "" {
		return scanAccount(r.pool.QueryRow(ctx, `UPDATE users
SET email=$2, name=$3, role=$4, password_hash=$5, updated_at=NOW()
WHERE id=$1
RETURNING `+accountColumns, a.ID, a.Email, a.Name, a.Role, passwordHash))
	}
	return scanAccount(r.pool.QueryRow(ctx, `UPDATE users
SET email=$2, name=$3, role=$4, updated_at=NOW()
WHERE id=$1
RETURNING `+accountColumns, a.ID, a.Email, a.Name, a.Role))
}

// SetBlocked flips the blocked flag.
func (r *Repository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET blocked=$2, updated_at=NOW() WHERE id=$1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
