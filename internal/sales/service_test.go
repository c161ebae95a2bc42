package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aquapoint/aquapoint/internal/shared"
	"github.com/aquapoint/aquapoint/internal/stock"
)

type memoryRepo struct {
	mu         sync.Mutex
	items      map[int64]stock.ItemStock
	sales      map[int64]Sale
	saleItems  map[int64][]SaleItem
	ledger     []stock.LedgerEntry
	nextSaleID int64
	nextLedger int64

	// beforeTx runs after the pre-check phase, standing in for a concurrent
	// transaction that commits in between.
	beforeTx func(*memoryRepo)
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(items ...stock.ItemStock) *memoryRepo {
	repo := &memoryRepo{
		items:     make(map[int64]stock.ItemStock),
		sales:     make(map[int64]Sale),
		saleItems: make(map[int64][]SaleItem),
	}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.beforeTx != nil {
		hook := r.beforeTx
		r.beforeTx = nil
		hook(r)
	}

	snapItems := make(map[int64]stock.ItemStock, len(r.items))
	for id, item := range r.items {
		snapItems[id] = item
	}
	snapSales := make(map[int64]Sale, len(r.sales))
	for id, sale := range r.sales {
		snapSales[id] = sale
	}
	snapSaleItems := make(map[int64][]SaleItem, len(r.saleItems))
	for id, lines := range r.saleItems {
		snapSaleItems[id] = append([]SaleItem(nil), lines...)
	}
	snapLedger := append([]stock.LedgerEntry(nil), r.ledger...)

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.items = snapItems
		r.sales = snapSales
		r.saleItems = snapSaleItems
		r.ledger = snapLedger
		return err
	}
	return nil
}

func (r *memoryRepo) GetSale(ctx context.Context, id int64) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	sale.Items = append([]SaleItem(nil), r.saleItems[id]...)
	sale.CustomerName = "Walk-In"
	return &sale, nil
}

func (r *memoryRepo) ListSales(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sales := []Sale{}
	for id, sale := range r.sales {
		sale.Items = append([]SaleItem(nil), r.saleItems[id]...)
		sales = append(sales, sale)
	}
	return sales, len(sales), nil
}

func (r *memoryRepo) GetItemStock(ctx context.Context, itemID int64) (stock.ItemStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return stock.ItemStock{}, shared.ErrNotFound
	}
	return item, nil
}

func (r *memoryRepo) stockOf(itemID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[itemID].CurrentStock
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	tx.repo.nextSaleID++
	sale.ID = tx.repo.nextSaleID
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = sale.CreatedAt
	tx.repo.sales[sale.ID] = sale
	return sale.ID, nil
}

func (tx *memoryTx) InsertSaleItems(ctx context.Context, saleID int64, items []SaleItem) error {
	tx.repo.saleItems[saleID] = append([]SaleItem(nil), items...)
	return nil
}

func (tx *memoryTx) UpdateSale(ctx context.Context, sale Sale) error {
	if _, ok := tx.repo.sales[sale.ID]; !ok {
		return shared.ErrNotFound
	}
	tx.repo.sales[sale.ID] = sale
	return nil
}

func (tx *memoryTx) ReplaceSaleItems(ctx context.Context, saleID int64, items []SaleItem) error {
	tx.repo.saleItems[saleID] = append([]SaleItem(nil), items...)
	return nil
}

func (tx *memoryTx) DeleteSale(ctx context.Context, saleID int64) error {
	if _, ok := tx.repo.sales[saleID]; !ok {
		return shared.ErrNotFound
	}
	delete(tx.repo.sales, saleID)
	delete(tx.repo.saleItems, saleID)
	return nil
}

func (tx *memoryTx) GetItemForUpdate(ctx context.Context, itemID int64) (stock.ItemStock, error) {
	item, ok := tx.repo.items[itemID]
	if !ok {
		return stock.ItemStock{}, shared.ErrNotFound
	}
	return item, nil
}

func (tx *memoryTx) UpdateItemStock(ctx context.Context, itemID int64, newStock int) error {
	item, ok := tx.repo.items[itemID]
	if !ok {
		return shared.ErrNotFound
	}
	item.CurrentStock = newStock
	tx.repo.items[itemID] = item
	return nil
}

func (tx *memoryTx) InsertLedgerEntry(ctx context.Context, entry stock.LedgerEntry) (int64, error) {
	tx.repo.nextLedger++
	entry.ID = tx.repo.nextLedger
	tx.repo.ledger = append(tx.repo.ledger, entry)
	return entry.ID, nil
}

func TestCreateCompletedSale(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "5-Gallon Refill", CurrentStock: 70})
	svc := NewService(repo, nil)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		InvoiceID:  "INV-1",
		CustomerID: 9,
		Items:      []SaleItem{{ItemID: 1, Quantity: 5, Price: 35}},
		Status:     SaleStatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, "INV-1", sale.InvoiceID)
	require.InDelta(t, 175.0, sale.Subtotal, 0.001)
	require.InDelta(t, 175.0, sale.Total, 0.001)
	require.Equal(t, "Walk-In", sale.CustomerName)
	require.Equal(t, 65, repo.stockOf(1))

	require.Len(t, repo.ledger, 1)
	require.Equal(t, stock.MovementStockOut, repo.ledger[0].Type)
	require.Equal(t, 5, repo.ledger[0].Quantity)
	require.Equal(t, "Sale: INV-1", repo.ledger[0].Reason)
}

func TestCreateSaleDefaultsToCompleted(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		InvoiceID:  "INV-2",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 2, Price: 30}},
	})
	require.NoError(t, err)
	require.Equal(t, SaleStatusCompleted, sale.Status)
	require.Equal(t, 8, repo.stockOf(1))
}

func TestCreatePendingSaleLeavesStockAlone(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		InvoiceID:  "INV-3",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 4, Price: 30}},
		Status:     SaleStatusPending,
	})
	require.NoError(t, err)
	require.Equal(t, 10, repo.stockOf(1))
	require.Empty(t, repo.ledger)
}

func TestCreateSaleValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{CustomerID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateSale(context.Background(), CreateSaleRequest{InvoiceID: "INV-4", CustomerID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "5-Gallon Container", CurrentStock: 3})
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		InvoiceID:  "INV-5",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 5, Price: 220}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	var insufficient *stock.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "5-Gallon Container", insufficient.ItemName)
	require.Equal(t, 3, insufficient.Available)
	require.Equal(t, 5, insufficient.Requested)

	require.Empty(t, repo.sales)
	require.Empty(t, repo.ledger)
	require.Equal(t, 3, repo.stockOf(1))
}

func TestCreateSaleRollsBackOnFailingLine(t *testing.T) {
	repo := newMemoryRepo(
		stock.ItemStock{ID: 1, Name: "A", CurrentStock: 10},
		stock.ItemStock{ID: 2, Name: "B", CurrentStock: 10},
	)
	svc := NewService(repo, nil)

	// Item 2 has enough at pre-check time, then loses its stock before the
	// transaction starts.
	repo.beforeTx = func(r *memoryRepo) {
		item := r.items[2]
		item.CurrentStock = 1
		r.items[2] = item
	}

	_, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		InvoiceID:  "INV-6",
		CustomerID: 1,
		Items: []SaleItem{
			{ItemID: 1, Quantity: 2, Price: 30},
			{ItemID: 2, Quantity: 5, Price: 30},
		},
	})
	require.ErrorIs(t, err, shared.ErrConflict)

	require.Equal(t, 10, repo.stockOf(1), "earlier line must roll back")
	require.Equal(t, 1, repo.stockOf(2))
	require.Empty(t, repo.sales)
	require.Empty(t, repo.ledger)
}

func TestDeleteCompletedSaleReversesStock(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 70})
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleRequest{
		InvoiceID:  "INV-7",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 5, Price: 35}},
	})
	require.NoError(t, err)
	require.Equal(t, 65, repo.stockOf(1))

	require.NoError(t, svc.DeleteSale(ctx, sale.ID))
	require.Equal(t, 70, repo.stockOf(1))

	require.Len(t, repo.ledger, 2)
	require.Equal(t, stock.MovementStockOut, repo.ledger[0].Type)
	require.Equal(t, 5, repo.ledger[0].Quantity)
	require.Equal(t, stock.MovementStockIn, repo.ledger[1].Type)
	require.Equal(t, 5, repo.ledger[1].Quantity)
	require.Equal(t, "Sale Deleted: INV-7", repo.ledger[1].Reason)

	_, err = svc.GetSale(ctx, sale.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeletePendingSaleSkipsReversal(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleRequest{
		InvoiceID:  "INV-8",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 2, Price: 30}},
		Status:     SaleStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, sale.ID))
	require.Equal(t, 10, repo.stockOf(1))
	require.Empty(t, repo.ledger)
}

func TestDeleteSaleNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	require.ErrorIs(t, svc.DeleteSale(context.Background(), 42), shared.ErrNotFound)
}

func TestUpdateCompletedSaleLinesRejected(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleRequest{
		InvoiceID:  "INV-9",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 2, Price: 30}},
	})
	require.NoError(t, err)

	items := []SaleItem{{ItemID: 1, Quantity: 8, Price: 30}}
	_, err = svc.UpdateSale(ctx, sale.ID, UpdateSaleRequest{Items: &items})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, 8, repo.stockOf(1), "stock must stay untouched")
}

func TestUpdatePendingSaleRecomputesTotals(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleRequest{
		InvoiceID:  "INV-10",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 2, Price: 30}},
		Status:     SaleStatusPending,
	})
	require.NoError(t, err)
	require.InDelta(t, 60.0, sale.Total, 0.001)

	items := []SaleItem{{ItemID: 1, Quantity: 3, Price: 30}}
	discount := 10.0
	updated, err := svc.UpdateSale(ctx, sale.ID, UpdateSaleRequest{Items: &items, Discount: &discount})
	require.NoError(t, err)
	require.InDelta(t, 90.0, updated.Subtotal, 0.001)
	require.InDelta(t, 80.0, updated.Total, 0.001)
	require.Equal(t, 10, repo.stockOf(1), "pending edits never touch stock")
}

func TestUpdateSaleHeaderOnCompletedSale(t *testing.T) {
	repo := newMemoryRepo(stock.ItemStock{ID: 1, Name: "Refill", CurrentStock: 10})
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleRequest{
		InvoiceID:  "INV-11",
		CustomerID: 1,
		Items:      []SaleItem{{ItemID: 1, Quantity: 2, Price: 30}},
	})
	require.NoError(t, err)

	notes := "paid in cash"
	updated, err := svc.UpdateSale(ctx, sale.ID, UpdateSaleRequest{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, "paid in cash", updated.Notes)
	require.Equal(t, SaleStatusCompleted, updated.Status)
}

func TestComputeTotals(t *testing.T) {
	subtotal, total := ComputeTotals([]SaleItem{
		{ItemID: 1, Quantity: 3, Price: 35.5},
		{ItemID: 2, Quantity: 1, Price: 0.1},
	}, 6.6)
	require.InDelta(t, 106.6, subtotal, 0.0001)
	require.InDelta(t, 100.0, total, 0.0001)
}
