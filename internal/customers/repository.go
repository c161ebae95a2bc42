package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Repository persists customers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, phone, address, customer_type, active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Type, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Get loads one customer.
func (r *Repository) Get(ctx context.Context, id int64) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
}

// List returns customers matching the filters plus the total count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Customer, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+`
FROM customers
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%')
  AND ($2 = '' OR customer_type = $2)
  AND ($3::boolean IS NULL OR active = $3)
ORDER BY name ASC
LIMIT $4 OFFSET $5`, filters.Search, string(filters.Type), filters.Active, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%')
  AND ($2 = '' OR customer_type = $2)
  AND ($3::boolean IS NULL OR active = $3)`,
		filters.Search, string(filters.Type), filters.Active).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Create inserts a customer and returns the persisted row.
func (r *Repository) Create(ctx context.Context, c Customer) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, address, customer_type, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+customerColumns, c.Name, c.Phone, c.Address, string(c.Type), c.Active))
}

// Update rewrites a customer row.
func (r *Repository) Update(ctx context.Context, c Customer) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `UPDATE customers
SET name=$2, phone=$3, address=$4, customer_type=$5, active=$6, updated_at=NOW()
WHERE id=$1
RETURNING `+customerColumns, c.ID, c.Name, c.Phone, c.Address, string(c.Type), c.Active))
}

// Delete removes a customer.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
