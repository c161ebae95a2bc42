package auth

import "time"

// Roles understood by the authorization middleware.
const (
	RoleUser          = "User"
	RoleAdministrator = "Administrator"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Blocked      bool
	Hidden       bool
	LoginCount   int
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
