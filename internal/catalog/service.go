package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Item, error)
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		validate: validator.New(),
	}
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns items matching filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

// Create adds a catalog item.
func (s *Service) Create(ctx context.Context, form ItemForm) (Item, error) {
	if err := s.validate.Struct(form); err != nil {
		return Item{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	item := Item{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Unit:        form.Unit,
		Category:    form.Category,
		MinStock:    form.MinStock,
		MaxStock:    form.MaxStock,
	}
	if form.CurrentStock != nil {
		item.CurrentStock = *form.CurrentStock
	}
	return s.repo.Create(ctx, item)
}

// Update rewrites the full item record. Rewriting stock through this path is
// an administrative override, not a ledgered movement, so it is audit-logged.
func (s *Service) Update(ctx context.Context, id int64, form ItemForm) (Item, error) {
	if err := s.validate.Struct(form); err != nil {
		return Item{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:           id,
		Name:         form.Name,
		Description:  form.Description,
		Price:        form.Price,
		Unit:         form.Unit,
		Category:     form.Category,
		CurrentStock: existing.CurrentStock,
		MinStock:     form.MinStock,
		MaxStock:     form.MaxStock,
	}
	if form.CurrentStock != nil {
		item.CurrentStock = *form.CurrentStock
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return Item{}, err
	}

	if s.audit != nil && form.CurrentStock != nil && *form.CurrentStock != existing.CurrentStock {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorID(ctx),
			Action:   "catalog:stock_override",
			Entity:   "item",
			EntityID: strconv.FormatInt(id, 10),
			Meta: map[string]any{
				"previous_stock": existing.CurrentStock,
				"new_stock":      *form.CurrentStock,
			},
		})
	}
	return updated, nil
}

// Delete removes an item by administrative action.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorID(ctx),
			Action:   "catalog:delete",
			Entity:   "item",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return nil
}
