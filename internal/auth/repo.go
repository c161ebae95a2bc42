package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Repository defines the persistence operations the auth service relies on.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	RecordLogin(ctx context.Context, id int64) error
	RecordFailedLogin(ctx context.Context, email string) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, blocked, hidden, login_count, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Blocked, &u.Hidden,
		&u.LoginCount, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *pgRepository) RecordLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET login_count = login_count + 1, failed_login_count = 0, last_login_at = NOW() WHERE id=$1`, id)
	return err
}

func (r *pgRepository) RecordFailedLogin(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET failed_login_count = failed_login_count + 1 WHERE email=$1`, email)
	return err
}
