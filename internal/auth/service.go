package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Blocked accounts are
// rejected with the same error as bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.repo.RecordFailedLogin(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.RecordLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Lookup resolves a user by id for actor resolution.
func (s *Service) Lookup(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
