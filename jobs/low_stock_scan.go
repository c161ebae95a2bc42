package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquapoint/aquapoint/internal/shared"
)

// LowStockScanJob sweeps the catalog for items at or below their reorder
// level so the morning shift knows what to refill first.
type LowStockScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	Audit  *shared.AuditLogger
	clock  func() time.Time
}

// NewLowStockScanJob initialises the low-stock scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger, audit *shared.AuditLogger) *LowStockScanJob {
	return &LowStockScanJob{
		Pool:   pool,
		Logger: logger,
		Audit:  audit,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type lowStockItem struct {
	ID           int64
	Name         string
	Category     string
	CurrentStock int
	MinStock     int
}

// Handle executes the low-stock sweep.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting low stock scan", slog.Int("threshold", payload.Threshold))

	items, err := j.scan(ctx, payload.Threshold)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	for _, item := range items {
		logger.Warn("item low on stock",
			slog.Int64("item_id", item.ID),
			slog.String("name", item.Name),
			slog.String("category", item.Category),
			slog.Int("current_stock", item.CurrentStock),
			slog.Int("min_stock", item.MinStock),
		)
	}

	if j.Audit != nil && len(items) > 0 {
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		if err := j.Audit.Record(ctx, shared.AuditLog{
			Action:   "stock:low_stock_scan",
			Entity:   "stock_scan",
			EntityID: start.Format(time.RFC3339),
			Meta:     map[string]any{"flagged": len(items), "item_ids": ids},
		}); err != nil {
			logger.Warn("record scan audit", slog.Any("error", err))
		}
	}

	logger.Info("completed low stock scan",
		slog.Int("flagged", len(items)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LowStockScanJob) scan(ctx context.Context, threshold int) ([]lowStockItem, error) {
	if j.Pool == nil {
		return nil, errors.New("low stock scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT id, name, category, current_stock, min_stock
FROM items
WHERE current_stock <= GREATEST(min_stock, $1)
ORDER BY current_stock ASC, name ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]lowStockItem, 0)
	for rows.Next() {
		var item lowStockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.CurrentStock, &item.MinStock); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
