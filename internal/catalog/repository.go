package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Repository persists catalog items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, description, price, unit, category, current_stock, min_stock, max_stock, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Unit, &item.Category,
		&item.CurrentStock, &item.MinStock, &item.MaxStock, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// Get fetches one item by id.
func (r *Repository) Get(ctx context.Context, id int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// List returns items matching the filters plus the total count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
  AND ($2 = '' OR category = $2)
  AND (NOT $3 OR current_stock <= min_stock)
ORDER BY name ASC
LIMIT $4 OFFSET $5`, filters.Search, filters.Category, filters.LowStock, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM items
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
  AND ($2 = '' OR category = $2)
  AND (NOT $3 OR current_stock <= min_stock)`, filters.Search, filters.Category, filters.LowStock).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a new item and returns it with generated fields.
func (r *Repository) Create(ctx context.Context, item Item) (Item, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO items (name, description, price, unit, category, current_stock, min_stock, max_stock)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+itemColumns, item.Name, item.Description, item.Price, item.Unit, item.Category, item.CurrentStock, item.MinStock, item.MaxStock)
	return scanItem(row)
}

// Update rewrites the full item record, stock included.
func (r *Repository) Update(ctx context.Context, item Item) (Item, error) {
	row := r.pool.QueryRow(ctx, `UPDATE items
SET name=$2, description=$3, price=$4, unit=$5, category=$6, current_stock=$7, min_stock=$8, max_stock=$9, updated_at=NOW()
WHERE id=$1
RETURNING `+itemColumns, item.ID, item.Name, item.Description, item.Price, item.Unit, item.Category, item.CurrentStock, item.MinStock, item.MaxStock)
	updated, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return updated, nil
}

// Delete removes an item. Hard delete per the station's workflow.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
