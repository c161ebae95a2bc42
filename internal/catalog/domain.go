package catalog

import "time"

// Item is a catalog entry representing a sellable or trackable unit: refills,
// containers, accessories. CurrentStock is only mutated through the stock
// engine, except for the administrative override on full-record edit.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Unit         string    `json:"unit"`
	Category     string    `json:"category"`
	CurrentStock int       `json:"currentStock"`
	MinStock     int       `json:"minStock"`
	MaxStock     *int      `json:"maxStock,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ItemForm carries caller input for create and full-record edit.
type ItemForm struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Description  string  `json:"description" validate:"max=1000"`
	Price        float64 `json:"price" validate:"gte=0"`
	Unit         string  `json:"unit" validate:"required,max=20"`
	Category     string  `json:"category" validate:"max=100"`
	CurrentStock *int    `json:"currentStock,omitempty" validate:"omitempty,gte=0"`
	MinStock     int     `json:"minStock" validate:"gte=0"`
	MaxStock     *int    `json:"maxStock,omitempty" validate:"omitempty,gte=0"`
}

// ListFilters narrows item listings.
type ListFilters struct {
	Search   string
	Category string
	LowStock bool
	Limit    int
	Offset   int
}
