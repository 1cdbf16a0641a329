// Package persist commits finished reports to the external sinks: the
// record store as the authoritative copy, the spreadsheet webhook as a
// best-effort mirror.
package persist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/verify"
	"github.com/eunjilab/saju-admin/pkg/sheets"
	"github.com/eunjilab/saju-admin/pkg/supabase"
)

// Gateway writes the assembled document and verification summary out.
// Either sink may be nil when unconfigured.
type Gateway struct {
	records supabase.Client
	sheets  sheets.Client
	now     func() time.Time
}

// NewGateway creates a Gateway. Both clients may be nil.
func NewGateway(records supabase.Client, sheetsClient sheets.Client) *Gateway {
	return &Gateway{records: records, sheets: sheetsClient, now: time.Now}
}

// Commit persists the document. Record-store failure is fatal to the run;
// an unconfigured record store makes the primary write a no-op. The
// spreadsheet mirror never fails the run.
func (g *Gateway) Commit(ctx context.Context, orderCode, document string, report verify.Report) error {
	log := zap.L().With(zap.String("order_code", orderCode))

	if g.records == nil {
		log.Info("record store not configured, skipping primary save")
	} else {
		summary, err := json.Marshal(report.Summary)
		if err != nil {
			return eris.Wrap(err, "persist: marshal verify summary")
		}
		fields := map[string]any{
			"md_result":        document,
			"md_verify_result": string(summary),
			"md_generated_at":  g.now().UTC().Format(time.RFC3339),
		}
		if err := g.records.PatchOrder(ctx, orderCode, fields); err != nil {
			return eris.Wrap(err, "persist: save to record store")
		}
		log.Info("record store save complete", zap.Int("document_len", len(document)))
	}

	if g.sheets == nil {
		log.Info("spreadsheet webhook not configured, skipping mirror")
		return nil
	}
	if err := g.sheets.UpdateResult(ctx, orderCode, document); err != nil {
		log.Warn("spreadsheet mirror failed", zap.Error(err))
		return nil
	}
	log.Info("spreadsheet mirror complete")
	return nil
}
