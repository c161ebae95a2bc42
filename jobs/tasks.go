package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan is the task type for the periodic low-stock sweep.
	TaskLowStockScan = "stock:low_stock_scan"
)

// LowStockScanPayload tunes one sweep. A zero Threshold means each item's
// own minStock is the trigger.
type LowStockScanPayload struct {
	Threshold int `json:"threshold"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
