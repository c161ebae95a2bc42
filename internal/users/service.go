package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquapoint/aquapoint/internal/auth"
	"github.com/aquapoint/aquapoint/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, filters ListFilters) ([]Account, int, error)
	Create(ctx context.Context, a Account, passwordHash string) (*Account, error)
	Update(ctx context.Context, a Account, passwordHash string) (*Account, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages user accounts for administrators.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns accounts matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	return s.repo.List(ctx, filters)
}

// Create validates the form, hashes the password with bcrypt, and inserts
// the account.
func (s *Service) Create(ctx context.Context, form CreateForm) (*Account, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := form.Role
	if role == "" {
		role = auth.RoleUser
	}
	account := Account{
		Email: strings.ToLower(strings.TrimSpace(form.Email)),
		Name:  strings.TrimSpace(form.Name),
		Role:  role,
	}
	created, err := s.repo.Create(ctx, account, string(hash))
	if err != nil {
		return nil, err
	}

	s.record(ctx, "users:create", created.ID, map[string]any{"email": created.Email, "role": created.Role})
	return created, nil
}

// Update rewrites an account's profile; a non-empty password is re-hashed.
func (s *Service) Update(ctx context.Context, id int64, form UpdateForm) (*Account, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var hash string
	if form.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	account := Account{
		ID:    existing.ID,
		Email: strings.ToLower(strings.TrimSpace(form.Email)),
		Name:  strings.TrimSpace(form.Name),
		Role:  form.Role,
	}
	updated, err := s.repo.Update(ctx, account, hash)
	if err != nil {
		return nil, err
	}

	s.record(ctx, "users:update", id, map[string]any{"email": updated.Email, "role": updated.Role, "password_changed": hash != ""})
	return updated, nil
}

// SetBlocked blocks or unblocks an account. Administrators cannot block
// themselves, which would lock the last admin out mid-session.
func (s *Service) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if blocked && shared.ActorID(ctx) == id {
		return fmt.Errorf("%w: cannot block your own account", shared.ErrValidation)
	}
	if err := s.repo.SetBlocked(ctx, id, blocked); err != nil {
		return err
	}
	s.record(ctx, "users:set_blocked", id, map[string]any{"blocked": blocked})
	return nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if shared.ActorID(ctx) == id {
		return fmt.Errorf("%w: cannot delete your own account", shared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "users:delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
