// Package status pushes coarse run-progress updates to the external record
// store. The channel is advisory: reports are fire-and-forget, failures are
// logged and swallowed, and the pipeline never reads a status back.
package status

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/pkg/supabase"
)

// Reporter writes run status rows. A nil records client disables external
// reporting entirely (local-only deployments).
type Reporter struct {
	records supabase.Client
	now     func() time.Time
}

// NewReporter creates a Reporter. records may be nil.
func NewReporter(records supabase.Client) *Reporter {
	return &Reporter{records: records, now: time.Now}
}

// Report pushes one status update for an order. Never returns an error and
// never blocks pipeline progress beyond the single PATCH attempt.
func (r *Reporter) Report(ctx context.Context, orderCode string, st model.RunStatus, message string, extra map[string]any) {
	zap.L().Info("run status",
		zap.String("order_code", orderCode),
		zap.String("status", string(st)),
		zap.String("message", message),
	)

	if r.records == nil {
		return
	}

	fields := map[string]any{
		"md_status":     string(st),
		"md_message":    message,
		"md_updated_at": r.now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		fields[k] = v
	}

	if err := r.records.PatchOrder(ctx, orderCode, fields); err != nil {
		zap.L().Warn("status report failed",
			zap.String("order_code", orderCode),
			zap.String("status", string(st)),
			zap.Error(err),
		)
	}
}
