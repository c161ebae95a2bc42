package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aquapoint/aquapoint/internal/shared"
	"github.com/aquapoint/aquapoint/internal/stock"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the sale transaction engine. A Completed sale and its stock
// decrements commit in one transaction; deleting a Completed sale reverses
// them the same way.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// CreateSale records a sale. When the status is Completed, every line is
// pre-checked against current stock before any write, then the sale insert
// and the per-line decrements with ledger entries execute atomically. A
// concurrent decrement that invalidates the pre-check surfaces as a
// retryable conflict and rolls the whole transaction back.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	status := req.Status
	if status == "" {
		status = SaleStatusCompleted
	}

	// Pre-check phase: reads only, no writes on failure or success.
	if status == SaleStatusCompleted {
		for _, line := range req.Items {
			item, err := s.repo.GetItemStock(ctx, line.ItemID)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", line.ItemID, err)
			}
			if item.CurrentStock < line.Quantity {
				return nil, &stock.InsufficientStockError{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Available: item.CurrentStock,
					Requested: line.Quantity,
				}
			}
		}
	}

	subtotal, total := ComputeTotals(req.Items, req.Discount)
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	sale := Sale{
		InvoiceID:       req.InvoiceID,
		Date:            date,
		CustomerID:      req.CustomerID,
		CustomerType:    req.CustomerType,
		TransactionType: req.TransactionType,
		Items:           req.Items,
		Subtotal:        subtotal,
		Discount:        req.Discount,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		Status:          status,
		Notes:           req.Notes,
	}
	if actorID := shared.ActorID(ctx); actorID != 0 {
		sale.CreatedBy = &actorID
	}

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		saleID, err = tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		if err := tx.InsertSaleItems(ctx, saleID, sale.Items); err != nil {
			return err
		}
		if sale.Status != SaleStatusCompleted {
			return nil
		}
		for _, line := range sale.Items {
			item, err := tx.GetItemForUpdate(ctx, line.ItemID)
			if err != nil {
				return fmt.Errorf("item %d: %w", line.ItemID, err)
			}
			newStock := item.CurrentStock - line.Quantity
			if newStock < 0 {
				// The pre-check passed, so another transaction consumed the
				// stock in between.
				return fmt.Errorf("%w: stock for %q changed during commit (available %d, requested %d)",
					shared.ErrConflict, item.Name, item.CurrentStock, line.Quantity)
			}
			if err := tx.UpdateItemStock(ctx, item.ID, newStock); err != nil {
				return err
			}
			entry := stock.LedgerEntry{
				ItemID:   item.ID,
				Type:     stock.MovementStockOut,
				Quantity: line.Quantity,
				Reason:   fmt.Sprintf("Sale: %s", sale.InvoiceID),
				UserID:   sale.CreatedBy,
			}
			if _, err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, saleID)
}

// GetSale loads one sale with lines and customer name.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns sales matching the filters.
func (s *Service) ListSales(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, filters)
}

// UpdateSale edits a sale in place. Replacing the line list is only allowed
// while the sale is not Completed, and a sale can never move into or out of
// Completed through this path; stock therefore never desynchronizes from the
// ledger. Callers needing to change a Completed sale delete and recreate it,
// which drives stock through the reversal path.
func (s *Service) UpdateSale(ctx context.Context, id int64, req UpdateSaleRequest) (*Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == SaleStatusCompleted {
		if req.Items != nil {
			return nil, fmt.Errorf("%w: line items of a completed sale are immutable; delete and recreate the sale", shared.ErrValidation)
		}
		if req.Status != nil {
			return nil, fmt.Errorf("%w: a completed sale cannot change status; delete and recreate the sale", shared.ErrValidation)
		}
	}

	sale := *existing
	if req.Date != nil {
		sale.Date = *req.Date
	}
	if req.CustomerID != nil {
		sale.CustomerID = *req.CustomerID
	}
	if req.CustomerType != nil {
		sale.CustomerType = *req.CustomerType
	}
	if req.TransactionType != nil {
		sale.TransactionType = *req.TransactionType
	}
	if req.PaymentMethod != nil {
		sale.PaymentMethod = *req.PaymentMethod
	}
	if req.Status != nil {
		sale.Status = *req.Status
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if req.Items != nil {
		sale.Items = *req.Items
	}
	if req.Discount != nil {
		sale.Discount = *req.Discount
	}
	if req.Items != nil || req.Discount != nil {
		sale.Subtotal, sale.Total = ComputeTotals(sale.Items, sale.Discount)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		if req.Items != nil {
			return tx.ReplaceSaleItems(ctx, sale.ID, sale.Items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, id)
}

// DeleteSale removes a sale. A Completed sale first has every line's stock
// re-incremented with a compensating ledger entry, all in one transaction
// with the row removal.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if sale.Status == SaleStatusCompleted {
			actorID := shared.ActorID(ctx)
			var userID *int64
			if actorID != 0 {
				userID = &actorID
			}
			for _, line := range sale.Items {
				item, err := tx.GetItemForUpdate(ctx, line.ItemID)
				if err != nil {
					return fmt.Errorf("item %d: %w", line.ItemID, err)
				}
				if err := tx.UpdateItemStock(ctx, item.ID, item.CurrentStock+line.Quantity); err != nil {
					return err
				}
				entry := stock.LedgerEntry{
					ItemID:   item.ID,
					Type:     stock.MovementStockIn,
					Quantity: line.Quantity,
					Reason:   fmt.Sprintf("Sale Deleted: %s", sale.InvoiceID),
					UserID:   userID,
				}
				if _, err := tx.InsertLedgerEntry(ctx, entry); err != nil {
					return err
				}
			}
		}
		return tx.DeleteSale(ctx, sale.ID)
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorID(ctx),
			Action:   "sales:delete",
			Entity:   "sale",
			EntityID: strconv.FormatInt(id, 10),
			Meta: map[string]any{
				"invoice_id": sale.InvoiceID,
				"status":     string(sale.Status),
				"reversed":   sale.Status == SaleStatusCompleted,
			},
		})
	}
	return nil
}
