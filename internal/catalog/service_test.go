package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquapoint/aquapoint/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Item
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return item, nil
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	items := []Item{}
	for _, item := range r.items {
		if filters.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.LowStock && item.CurrentStock > item.MinStock {
			continue
		}
		items = append(items, item)
	}
	return items, len(items), nil
}

func (r *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryRepo) Update(ctx context.Context, item Item) (Item, error) {
	if _, ok := r.items[item.ID]; !ok {
		return Item{}, shared.ErrNotFound
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestCreateItem(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	initial := 40
	item, err := svc.Create(context.Background(), ItemForm{
		Name:         "5-Gallon Round Container",
		Price:        220,
		Unit:         "pc",
		Category:     "Container",
		CurrentStock: &initial,
		MinStock:     10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), item.ID)
	require.Equal(t, 40, item.CurrentStock)
}

func TestCreateItemValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Create(context.Background(), ItemForm{Name: "No Unit"})
	require.ErrorIs(t, err, shared.ErrValidation)

	negative := -1
	_, err = svc.Create(context.Background(), ItemForm{Name: "Bad Stock", Unit: "pc", CurrentStock: &negative})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdatePreservesStockWhenOmitted(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	initial := 25
	item, err := svc.Create(ctx, ItemForm{Name: "Faucet Pump", Unit: "pc", Price: 150, CurrentStock: &initial})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, ItemForm{Name: "Faucet Pump", Unit: "pc", Price: 160})
	require.NoError(t, err)
	require.InDelta(t, 160.0, updated.Price, 0.001)
	require.Equal(t, 25, updated.CurrentStock)
}

func TestUpdateStockOverrideIsAudited(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	initial := 25
	item, err := svc.Create(ctx, ItemForm{Name: "Faucet Pump", Unit: "pc", CurrentStock: &initial})
	require.NoError(t, err)

	override := 30
	updated, err := svc.Update(ctx, item.ID, ItemForm{Name: "Faucet Pump", Unit: "pc", CurrentStock: &override})
	require.NoError(t, err)
	require.Equal(t, 30, updated.CurrentStock)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "catalog:stock_override", audit.logs[0].Action)
	require.Equal(t, 25, audit.logs[0].Meta["previous_stock"])
	require.Equal(t, 30, audit.logs[0].Meta["new_stock"])
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Update(context.Background(), 99, ItemForm{Name: "Ghost", Unit: "pc"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListLowStockFilter(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	low, high := 2, 50
	_, err := svc.Create(ctx, ItemForm{Name: "Running Low", Unit: "pc", CurrentStock: &low, MinStock: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ItemForm{Name: "Plenty", Unit: "pc", CurrentStock: &high, MinStock: 5})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, ListFilters{LowStock: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Running Low", items[0].Name)
}
