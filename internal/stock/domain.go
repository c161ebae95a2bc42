package stock

import (
	"fmt"
	"time"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// MovementType enumerates ledger movement kinds.
type MovementType string

const (
	// MovementStockIn represents an inbound movement.
	MovementStockIn MovementType = "Stock In"
	// MovementStockOut represents an outbound movement.
	MovementStockOut MovementType = "Stock Out"
)

// Direction of a requested adjustment.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// LedgerEntry is one immutable record of a quantity movement in or out of an
// item. Written exactly once per movement, never updated or deleted.
type LedgerEntry struct {
	ID        int64        `json:"id"`
	ItemID    int64        `json:"itemId"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	Reason    string       `json:"reason"`
	UserID    *int64       `json:"userId,omitempty"`
	Username  *string      `json:"username,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// AdjustmentInput describes one requested stock movement.
type AdjustmentInput struct {
	ItemID    int64     `json:"itemId" validate:"required,gt=0"`
	Quantity  int       `json:"quantity" validate:"required"`
	Direction Direction `json:"direction" validate:"required,oneof=increase decrease"`
	Reason    string    `json:"reason" validate:"max=500"`
	ActorID   int64     `json:"-"`
}

// AdjustmentResult reports the stock level after one applied movement.
type AdjustmentResult struct {
	ItemID   int64 `json:"id"`
	NewStock int   `json:"currentStock"`
}

// InsufficientStockError names the offending item and both quantities so the
// operator can correct the request.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (item %d): available %d, requested %d",
		e.ItemName, e.ItemID, e.Available, e.Requested)
}

// Unwrap ties the typed error into the shared taxonomy.
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}
