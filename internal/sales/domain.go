package sales

import "time"

// SaleStatus tracks whether a sale has applied its stock decrements.
type SaleStatus string

const (
	// SaleStatusCompleted means stock was decremented when the sale was recorded.
	SaleStatusCompleted SaleStatus = "Completed"
	// SaleStatusPending means the sale is recorded without stock movement.
	SaleStatusPending SaleStatus = "Pending"
	// SaleStatusCancelled means the sale was voided before completion.
	SaleStatusCancelled SaleStatus = "Cancelled"
)

// SaleItem is one line of a sale: an item sold at a quantity and unit price.
type SaleItem struct {
	ItemID   int64   `json:"itemId" validate:"required,gt=0"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// Sale is one point-of-sale transaction. Line items live in a normalized
// sale_items relation and are loaded alongside the header.
type Sale struct {
	ID              int64      `json:"id"`
	InvoiceID       string     `json:"invoiceId"`
	Date            time.Time  `json:"date"`
	CustomerID      int64      `json:"customerId"`
	CustomerName    string     `json:"customerName,omitempty"`
	CustomerType    string     `json:"customerType"`
	TransactionType string     `json:"transactionType"`
	Items           []SaleItem `json:"items"`
	Subtotal        float64    `json:"subtotal"`
	Discount        float64    `json:"discount"`
	Total           float64    `json:"total"`
	PaymentMethod   string     `json:"paymentMethod"`
	Status          SaleStatus `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedBy       *int64     `json:"createdBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateSaleRequest carries caller input for sale creation. Subtotal and
// total are computed from the lines and discount, never accepted from the
// caller.
type CreateSaleRequest struct {
	InvoiceID       string     `json:"invoiceId" validate:"required,max=50"`
	Date            *time.Time `json:"date,omitempty"`
	CustomerID      int64      `json:"customerId" validate:"required,gt=0"`
	CustomerType    string     `json:"customerType" validate:"max=50"`
	TransactionType string     `json:"transactionType" validate:"max=50"`
	Items           []SaleItem `json:"items" validate:"required,min=1,dive"`
	Discount        float64    `json:"discount" validate:"gte=0"`
	PaymentMethod   string     `json:"paymentMethod" validate:"max=50"`
	Status          SaleStatus `json:"status" validate:"omitempty,oneof=Completed Pending Cancelled"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

// UpdateSaleRequest edits a sale in place. The line list may only be replaced
// while the sale is not Completed; see Service.UpdateSale.
type UpdateSaleRequest struct {
	Date            *time.Time  `json:"date,omitempty"`
	CustomerID      *int64      `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	CustomerType    *string     `json:"customerType,omitempty" validate:"omitempty,max=50"`
	TransactionType *string     `json:"transactionType,omitempty" validate:"omitempty,max=50"`
	Items           *[]SaleItem `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Discount        *float64    `json:"discount,omitempty" validate:"omitempty,gte=0"`
	PaymentMethod   *string     `json:"paymentMethod,omitempty" validate:"omitempty,max=50"`
	Status          *SaleStatus `json:"status,omitempty" validate:"omitempty,oneof=Pending Cancelled"`
	Notes           *string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ListFilters narrows sale listings.
type ListFilters struct {
	CustomerID int64
	Status     SaleStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
