package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, filters ListFilters) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) (*Customer, error)
	Update(ctx context.Context, c Customer) (*Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Service manages the customer directory.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	titler   cases.Caser
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		titler:   cases.Title(language.English),
	}
}

// Get loads one customer.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

// Create validates the form and inserts a customer. Display names are
// whitespace-trimmed and title-cased so "juan dela cruz" and "JUAN DELA CRUZ"
// read the same in sale listings.
func (s *Service) Create(ctx context.Context, form CustomerForm) (*Customer, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	c := s.fromForm(form)
	if form.Active == nil {
		c.Active = true
	}
	return s.repo.Create(ctx, c)
}

// Update validates the form and rewrites an existing customer.
func (s *Service) Update(ctx context.Context, id int64, form CustomerForm) (*Customer, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c := s.fromForm(form)
	c.ID = existing.ID
	if form.Active == nil {
		c.Active = existing.Active
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) fromForm(form CustomerForm) Customer {
	c := Customer{
		Name:    s.titler.String(strings.Join(strings.Fields(form.Name), " ")),
		Phone:   strings.TrimSpace(form.Phone),
		Address: strings.TrimSpace(form.Address),
		Type:    form.Type,
	}
	if c.Type == "" {
		c.Type = TypeRegular
	}
	if form.Active != nil {
		c.Active = *form.Active
	}
	return c
}
