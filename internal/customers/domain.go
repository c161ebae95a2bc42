package customers

import "time"

// CustomerType distinguishes walk-in customers from resellers.
type CustomerType string

const (
	TypeRegular CustomerType = "Regular"
	TypeDealer  CustomerType = "Dealer"
)

// Customer is one directory entry.
type Customer struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Type      CustomerType `json:"type"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CustomerForm carries caller input for create and update.
type CustomerForm struct {
	Name    string       `json:"name" validate:"required,max=150"`
	Phone   string       `json:"phone" validate:"max=30"`
	Address string       `json:"address" validate:"max=300"`
	Type    CustomerType `json:"type" validate:"omitempty,oneof=Regular Dealer"`
	Active  *bool        `json:"active,omitempty"`
}

// ListFilters narrows customer listings.
type ListFilters struct {
	Search string
	Type   CustomerType
	Active *bool
	Limit  int
	Offset int
}
