package stock

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the stock adjustment engine. Every mutation runs the same
// read-check-write-append sequence inside one transaction: lock the item row,
// verify the resulting quantity stays non-negative, update the item and
// append exactly one ledger entry.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// Adjust applies one manual stock movement and returns the new stock level.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (AdjustmentResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return AdjustmentResult{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	var result AdjustmentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		result, err = applyAdjustment(ctx, tx, input)
		return err
	})
	if err != nil {
		return AdjustmentResult{}, err
	}
	return result, nil
}

// BulkAdjust applies the updates in caller-given order inside a single
// transaction. Any failure rolls back the entire batch, including updates
// earlier in the list that would individually have succeeded.
func (s *Service) BulkAdjust(ctx context.Context, updates []AdjustmentInput) ([]AdjustmentResult, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one update is required", shared.ErrValidation)
	}
	for i, update := range updates {
		if err := s.validate.Struct(update); err != nil {
			return nil, fmt.Errorf("%w: update %d: %v", shared.ErrValidation, i+1, err)
		}
	}

	results := make([]AdjustmentResult, 0, len(updates))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, update := range updates {
			result, err := applyAdjustment(ctx, tx, update)
			if err != nil {
				return fmt.Errorf("item %d: %w", update.ItemID, err)
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil && len(updates) > 0 {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  updates[0].ActorID,
			Action:   "stock:bulk_adjust",
			Entity:   "stock_batch",
			EntityID: fmt.Sprintf("batch-%d", len(updates)),
			Meta:     map[string]any{"updates": len(updates)},
		})
	}
	return results, nil
}

// History returns the ledger for one item with acting usernames joined.
func (s *Service) History(ctx context.Context, itemID int64) ([]LedgerEntry, error) {
	return s.repo.History(ctx, itemID)
}

// applyAdjustment runs the locked read-check-write-append sequence for one
// movement. Callers supply the surrounding transaction.
func applyAdjustment(ctx context.Context, tx TxRepository, input AdjustmentInput) (AdjustmentResult, error) {
	qty := input.Quantity
	if qty < 0 {
		qty = -qty
	}
	if qty == 0 {
		return AdjustmentResult{}, fmt.Errorf("%w: quantity must be a positive number", shared.ErrValidation)
	}

	item, err := tx.GetItemForUpdate(ctx, input.ItemID)
	if err != nil {
		return AdjustmentResult{}, err
	}

	movement := MovementStockIn
	newStock := item.CurrentStock + qty
	if input.Direction == DirectionDecrease {
		movement = MovementStockOut
		newStock = item.CurrentStock - qty
		if newStock < 0 {
			return AdjustmentResult{}, &InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: item.CurrentStock,
				Requested: qty,
			}
		}
	}

	if err := tx.UpdateItemStock(ctx, item.ID, newStock); err != nil {
		return AdjustmentResult{}, err
	}

	entry := LedgerEntry{
		ItemID:   item.ID,
		Type:     movement,
		Quantity: qty,
		Reason:   input.Reason,
	}
	if input.ActorID != 0 {
		actorID := input.ActorID
		entry.UserID = &actorID
	}
	if _, err := tx.InsertLedgerEntry(ctx, entry); err != nil {
		return AdjustmentResult{}, err
	}

	return AdjustmentResult{ItemID: item.ID, NewStock: newStock}, nil
}
