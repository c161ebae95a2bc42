package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquapoint/aquapoint/internal/shared"
)

type memoryRepo struct {
	users        map[string]*User
	failedLogins map[string]int
	logins       map[int64]int
}

func newMemoryRepo(users ...*User) *memoryRepo {
	repo := &memoryRepo{
		users:        make(map[string]*User),
		failedLogins: make(map[string]int),
		logins:       make(map[int64]int),
	}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) RecordLogin(ctx context.Context, id int64) error {
	r.logins[id]++
	return nil
}

func (r *memoryRepo) RecordFailedLogin(ctx context.Context, email string) error {
	r.failedLogins[email]++
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryRepo(&User{ID: 1, Email: "cashier@aquapoint.local", PasswordHash: hashOf(t, "secret123")})
	svc := NewService(repo)

	user, err := svc.Authenticate(context.Background(), "cashier@aquapoint.local", "secret123")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, 1, repo.logins[1])
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newMemoryRepo(&User{ID: 1, Email: "cashier@aquapoint.local", PasswordHash: hashOf(t, "secret123")})
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "cashier@aquapoint.local", "nope")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	require.Equal(t, 1, repo.failedLogins["cashier@aquapoint.local"])
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Authenticate(context.Background(), "ghost@aquapoint.local", "secret123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateBlockedAccount(t *testing.T) {
	repo := newMemoryRepo(&User{ID: 1, Email: "blocked@aquapoint.local", PasswordHash: hashOf(t, "secret123"), Blocked: true})
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "blocked@aquapoint.local", "secret123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	require.Zero(t, repo.logins[1])
}
