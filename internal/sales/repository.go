package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/platform/db"
	"github.com/aquapoint/aquapoint/internal/shared"
	"github.com/aquapoint/aquapoint/internal/stock"
)

// TxRepository exposes the transactional operations the sale engine needs:
// the sale rows themselves plus the same locked stock primitives the
// adjustment engine uses, so a sale and its decrements commit together.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertSaleItems(ctx context.Context, saleID int64, items []SaleItem) error
	UpdateSale(ctx context.Context, sale Sale) error
	ReplaceSaleItems(ctx context.Context, saleID int64, items []SaleItem) error
	DeleteSale(ctx context.Context, saleID int64) error

	GetItemForUpdate(ctx context.Context, itemID int64) (stock.ItemStock, error)
	UpdateItemStock(ctx context.Context, itemID int64, newStock int) error
	InsertLedgerEntry(ctx context.Context, entry stock.LedgerEntry) (int64, error)
}

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, filters ListFilters) ([]Sale, int, error)
	GetItemStock(ctx context.Context, itemID int64) (stock.ItemStock, error)
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("sales repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const saleColumns = `s.id, s.invoice_id, s.sale_date, s.customer_id, c.name, s.customer_type, s.transaction_type,
s.subtotal, s.discount, s.total, s.payment_method, s.status, s.notes, s.created_by, s.created_at, s.updated_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var sale Sale
	err := row.Scan(&sale.ID, &sale.InvoiceID, &sale.Date, &sale.CustomerID, &sale.CustomerName,
		&sale.CustomerType, &sale.TransactionType, &sale.Subtotal, &sale.Discount, &sale.Total,
		&sale.PaymentMethod, &sale.Status, &sale.Notes, &sale.CreatedBy, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// GetSale loads a sale with its line items and the customer display name.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+`
FROM sales s
JOIN customers c ON c.id = s.customer_id
WHERE s.id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.saleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns sales matching the filters plus the total count.
func (r *Repository) ListSales(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+`
FROM sales s
JOIN customers c ON c.id = s.customer_id
WHERE ($1 = 0 OR s.customer_id = $1)
  AND ($2 = '' OR s.status = $2)
  AND ($3::timestamptz IS NULL OR s.sale_date >= $3)
  AND ($4::timestamptz IS NULL OR s.sale_date <= $4)
ORDER BY s.sale_date DESC, s.id DESC
LIMIT $5 OFFSET $6`, filters.CustomerID, string(filters.Status), filters.DateFrom, filters.DateTo, limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range sales {
		items, err := r.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, 0, err
		}
		sales[i].Items = items
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales s
WHERE ($1 = 0 OR s.customer_id = $1)
  AND ($2 = '' OR s.status = $2)
  AND ($3::timestamptz IS NULL OR s.sale_date >= $3)
  AND ($4::timestamptz IS NULL OR s.sale_date <= $4)`,
		filters.CustomerID, string(filters.Status), filters.DateFrom, filters.DateTo).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// GetItemStock reads an item's stock without locking; used by the pre-check
// phase which must not write.
func (r *Repository) GetItemStock(ctx context.Context, itemID int64) (stock.ItemStock, error) {
	var item stock.ItemStock
	err := r.pool.QueryRow(ctx, `SELECT id, name, current_stock FROM items WHERE id=$1`, itemID).
		Scan(&item.ID, &item.Name, &item.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stock.ItemStock{}, shared.ErrNotFound
		}
		return stock.ItemStock{}, err
	}
	return item, nil
}

func (r *Repository) saleItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT item_id, quantity, price FROM sale_items WHERE sale_id=$1 ORDER BY line_order ASC`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []SaleItem{}
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ItemID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (invoice_id, sale_date, customer_id, customer_type, transaction_type, subtotal, discount, total, payment_method, status, notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`, sale.InvoiceID, sale.Date, sale.CustomerID, sale.CustomerType, sale.TransactionType,
		sale.Subtotal, sale.Discount, sale.Total, sale.PaymentMethod, string(sale.Status), sale.Notes, sale.CreatedBy).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return 0, fmt.Errorf("%w: invoice %q already exists", shared.ErrConflict, sale.InvoiceID)
	}
	return id, err
}

func (r *txRepository) InsertSaleItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for i, item := range items {
		_, err := r.tx.Exec(ctx, `INSERT INTO sale_items (sale_id, item_id, quantity, price, line_order) VALUES ($1, $2, $3, $4, $5)`,
			saleID, item.ItemID, item.Quantity, item.Price, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) UpdateSale(ctx context.Context, sale Sale) error {
	tag, err := r.tx.Exec(ctx, `UPDATE sales
SET sale_date=$2, customer_id=$3, customer_type=$4, transaction_type=$5, subtotal=$6, discount=$7, total=$8, payment_method=$9, status=$10, notes=$11, updated_at=NOW()
WHERE id=$1`, sale.ID, sale.Date, sale.CustomerID, sale.CustomerType, sale.TransactionType,
		sale.Subtotal, sale.Discount, sale.Total, sale.PaymentMethod, string(sale.Status), sale.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepository) ReplaceSaleItems(ctx context.Context, saleID int64, items []SaleItem) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id=$1`, saleID); err != nil {
		return err
	}
	for i, item := range items {
		_, err := r.tx.Exec(ctx, `INSERT INTO sale_items (sale_id, item_id, quantity, price, line_order) VALUES ($1, $2, $3, $4, $5)`,
			saleID, item.ItemID, item.Quantity, item.Price, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteSale(ctx context.Context, saleID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id=$1`, saleID); err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM sales WHERE id=$1`, saleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, itemID int64) (stock.ItemStock, error) {
	var item stock.ItemStock
	err := r.tx.QueryRow(ctx, `SELECT id, name, current_stock FROM items WHERE id=$1 FOR UPDATE`, itemID).
		Scan(&item.ID, &item.Name, &item.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stock.ItemStock{}, shared.ErrNotFound
		}
		return stock.ItemStock{}, err
	}
	return item, nil
}

func (r *txRepository) UpdateItemStock(ctx context.Context, itemID int64, newStock int) error {
	_, err := r.tx.Exec(ctx, `UPDATE items SET current_stock=$2, updated_at=NOW() WHERE id=$1`, itemID, newStock)
	return err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry stock.LedgerEntry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_history (item_id, movement_type, quantity, reason, user_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, entry.ItemID, string(entry.Type), entry.Quantity, entry.Reason, entry.UserID).Scan(&id)
	return id, err
}
