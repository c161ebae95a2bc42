package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/platform/db"
	"github.com/aquapoint/aquapoint/internal/shared"
)

// ItemStock is the slice of the item row the adjustment engine operates on.
type ItemStock struct {
	ID           int64
	Name         string
	CurrentStock int
}

// TxRepository exposes the transactional operations used by the engine. The
// row lock taken by GetItemForUpdate serializes concurrent adjustments
// against the same item.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, itemID int64) (ItemStock, error)
	UpdateItemStock(ctx context.Context, itemID int64, newStock int) error
	InsertLedgerEntry(ctx context.Context, entry LedgerEntry) (int64, error)
}

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	History(ctx context.Context, itemID int64) ([]LedgerEntry, error)
}

// Repository persists stock data in PostgreSQL.
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

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// History lists the ledger for one item, oldest first, with the acting
// username joined in.
func (r *Repository) History(ctx context.Context, itemID int64) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT h.id, h.item_id, h.movement_type, h.quantity, h.reason, h.user_id, u.name, h.created_at
FROM stock_history h
LEFT JOIN users u ON u.id = h.user_id
WHERE h.item_id = $1
ORDER BY h.created_at ASC, h.id ASC`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LedgerEntry{}
	for rows.Next() {
		var entry LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.ItemID, &entry.Type, &entry.Quantity, &entry.Reason, &entry.UserID, &entry.Username, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, itemID int64) (ItemStock, error) {
	var item ItemStock
	err := r.tx.QueryRow(ctx, `SELECT id, name, current_stock FROM items WHERE id=$1 FOR UPDATE`, itemID).
		Scan(&item.ID, &item.Name, &item.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemStock{}, shared.ErrNotFound
		}
		return ItemStock{}, err
	}
	return item, nil
}

func (r *txRepository) UpdateItemStock(ctx context.Context, itemID int64, newStock int) error {
	_, err := r.tx.Exec(ctx, `UPDATE items SET current_stock=$2, updated_at=NOW() WHERE id=$1`, itemID, newStock)
	return err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry LedgerEntry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_history (item_id, movement_type, quantity, reason, user_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, entry.ItemID, string(entry.Type), entry.Quantity, entry.Reason, entry.UserID).Scan(&id)
	return id, err
}
