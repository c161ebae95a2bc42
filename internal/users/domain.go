package users

import "time"

// Account is the admin-facing view of a user. The password hash never leaves
// the package.
type Account struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Blocked     bool       `json:"blocked"`
	Hidden      bool       `json:"hidden"`
	LoginCount  int        `json:"loginCount"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateForm carries input for account creation.
type CreateForm struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Name     string `json:"name" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=User Administrator"`
}

// UpdateForm edits an account. Empty password leaves the hash untouched.
type UpdateForm struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Name     string `json:"name" validate:"required,max=150"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=User Administrator"`
}

// ListFilters narrows account listings. Hidden accounts are excluded unless
// IncludeHidden is set.
type ListFilters struct {
	Search        string
	Role          string
	IncludeHidden bool
	Limit         int
	Offset        int
}
