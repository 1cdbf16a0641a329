// Package monitoring computes operational metrics from the run store.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/store"
)

// MetricsSnapshot holds a point-in-time view of pipeline health.
type MetricsSnapshot struct {
	// Run metrics (within lookback window).
	RunsTotal     int     `json:"runs_total"`
	RunsCompleted int     `json:"runs_completed"`
	RunsFailed    int     `json:"runs_failed"`
	RunsQueued    int     `json:"runs_queued"`
	RunsActive    int     `json:"runs_active"`
	FailRate      float64 `json:"fail_rate"`
	AvgTokens     int64   `json:"avg_tokens"`

	// Verification metrics (completed runs only).
	VerifyErrors int `json:"verify_errors"`
	AutoFixed    int `json:"auto_fixed"`
	NeedsReview  int `json:"needs_review"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the run store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of pipeline metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	var totalTokens int64

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusCompleted:
			snap.RunsCompleted++
		case model.RunStatusError:
			snap.RunsFailed++
		case model.RunStatusQueued:
			snap.RunsQueued++
		default:
			snap.RunsActive++
		}
		if r.Result != nil {
			totalTokens += r.Result.TotalUsage.InputTokens + r.Result.TotalUsage.OutputTokens
			snap.VerifyErrors += r.Result.VerifySummary.TotalErrors
			snap.AutoFixed += r.Result.VerifySummary.AutoFixed
			snap.NeedsReview += r.Result.VerifySummary.NeedsReview
		}
	}

	if snap.RunsTotal > 0 {
		finished := snap.RunsCompleted + snap.RunsFailed
		if finished > 0 {
			snap.FailRate = float64(snap.RunsFailed) / float64(finished)
		}
		snap.AvgTokens = totalTokens / int64(snap.RunsTotal)
	}

	return snap, nil
}
