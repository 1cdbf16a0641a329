package store

import (
	"context"
	"time"

	"github.com/eunjilab/saju-admin/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	OrderCode    string          `json:"order_code,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the report pipeline.
type Store interface {
	CreateRun(ctx context.Context, orderCode string, customer model.Customer) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, message string) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	GetRunByOrder(ctx context.Context, orderCode string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
