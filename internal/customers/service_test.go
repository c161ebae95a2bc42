package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquapoint/aquapoint/internal/shared"
)

type memoryRepo struct {
	customers map[int64]Customer
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: make(map[int64]Customer)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Customer, int, error) {
	customers := []Customer{}
	for _, c := range r.customers {
		customers = append(customers, c)
	}
	return customers, len(customers), nil
}

func (r *memoryRepo) Create(ctx context.Context, c Customer) (*Customer, error) {
	r.nextID++
	c.ID = r.nextID
	r.customers[c.ID] = c
	return &c, nil
}

func (r *memoryRepo) Update(ctx context.Context, c Customer) (*Customer, error) {
	if _, ok := r.customers[c.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	r.customers[c.ID] = c
	return &c, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.customers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func TestCreateNormalizesName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	c, err := svc.Create(context.Background(), CustomerForm{Name: "  juan   dela cruz "})
	require.NoError(t, err)
	require.Equal(t, "Juan Dela Cruz", c.Name)
	require.Equal(t, TypeRegular, c.Type)
	require.True(t, c.Active)
}

func TestCreateDealer(t *testing.T) {
	svc := NewService(newMemoryRepo())

	c, err := svc.Create(context.Background(), CustomerForm{Name: "LOPEZ SARI-SARI STORE", Type: TypeDealer})
	require.NoError(t, err)
	require.Equal(t, "Lopez Sari-Sari Store", c.Name)
	require.Equal(t, TypeDealer, c.Type)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CustomerForm{})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CustomerForm{Name: "X", Type: "Wholesale"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateKeepsActiveWhenOmitted(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	inactive := false
	c, err := svc.Create(ctx, CustomerForm{Name: "Maria Santos", Active: &inactive})
	require.NoError(t, err)
	require.False(t, c.Active)

	updated, err := svc.Update(ctx, c.ID, CustomerForm{Name: "Maria Santos", Phone: "0917-555-0101"})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, "0917-555-0101", updated.Phone)
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Update(context.Background(), 42, CustomerForm{Name: "Ghost"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
