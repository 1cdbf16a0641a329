// Package pipeline drives the ordered, dependent generation of report
// sections, the verification pass, and persistence of the result.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/config"
	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/persist"
	"github.com/eunjilab/saju-admin/internal/status"
	"github.com/eunjilab/saju-admin/internal/store"
	"github.com/eunjilab/saju-admin/internal/verify"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

// ReviewQueue receives mismatches that need a human decision. Advisory;
// queue failures never affect the run.
type ReviewQueue interface {
	QueueMismatches(ctx context.Context, orderCode string, mismatches []verify.Mismatch) error
}

// Pipeline orchestrates one report run end to end.
type Pipeline struct {
	cfg          config.PipelineConfig
	anthropicCfg config.AnthropicConfig
	client       anthropic.Client
	store        store.Store
	reporter     *status.Reporter
	gateway      *persist.Gateway
	reviews      ReviewQueue
	sections     []model.SectionSpec

	// Injected for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates a Pipeline with all dependencies. reviews may be nil.
func New(
	cfg config.PipelineConfig,
	anthropicCfg config.AnthropicConfig,
	client anthropic.Client,
	st store.Store,
	reporter *status.Reporter,
	gateway *persist.Gateway,
	reviews ReviewQueue,
	sections []model.SectionSpec,
) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		anthropicCfg: anthropicCfg,
		client:       client,
		store:        st,
		reporter:     reporter,
		gateway:      gateway,
		reviews:      reviews,
		sections:     sections,
		sleep:        sleepCtx,
		now:          time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run executes the full pipeline for one order: sequential section
// generation, verification with auto-repair, and persistence. Any
// component failure lands the run in a terminal error status; no error
// escapes past the returned value.
func (p *Pipeline) Run(ctx context.Context, orderCode string, customer model.Customer, promptOverride string) (*model.RunResult, error) {
	log := zap.L().With(
		zap.String("order_code", orderCode),
		zap.String("customer", customer.Name),
	)
	log.Info("pipeline: starting report generation")

	if err := customer.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid customer")
	}

	run, err := p.store.CreateRun(ctx, orderCode, customer)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(st model.RunStatus, message string, extra map[string]any) {
		if storeErr := p.store.UpdateRunStatus(ctx, run.ID, st, message); storeErr != nil {
			log.Warn("pipeline: failed to update run status", zap.Error(storeErr))
		}
		p.reporter.Report(ctx, orderCode, st, message, extra)
	}

	fail := func(err error, message string) (*model.RunResult, error) {
		log.Error("pipeline: run failed", zap.String("stage", message), zap.Error(err))
		setStatus(model.RunStatusError, fmt.Sprintf("%s: %s", message, err.Error()), nil)
		return nil, err
	}

	// ===== Generate sections in table order =====
	setStatus(model.RunStatusGenerating, "생성 시작...", nil)

	required := model.RequiredSections(p.sections, customer.Package)
	var assembled strings.Builder
	var sectionResults []model.SectionResult
	var totalUsage model.TokenUsage

	for i, section := range required {
		msg := fmt.Sprintf("섹션 %d/%d: %s 생성 중...", i+1, len(required), section.Name)
		setStatus(model.RunStatusGenerating, msg, nil)

		result, genErr := p.generateSection(ctx, customer, section, assembled.String(), promptOverride)
		if genErr != nil {
			return fail(genErr, fmt.Sprintf("섹션 %s 생성 실패", section.Name))
		}

		assembled.WriteString(result.Content)
		assembled.WriteString("\n\n")
		sectionResults = append(sectionResults, *result)
		totalUsage.Add(result.Usage)

		log.Info("pipeline: section complete",
			zap.String("section", section.ID),
			zap.Int("length", len(result.Content)),
			zap.Bool("incomplete", result.Incomplete),
			zap.Int("retries", result.RetriesUsed),
		)
	}

	document := metaBlock(customer, p.now()) + "\n\n" + assembled.String()

	// ===== Verify against the calculation blob =====
	setStatus(model.RunStatusVerifying, "검증 중...", nil)

	sourceText := promptOverride
	if sourceText == "" {
		sourceText = customer.SajuResult
	}
	report := verify.Verify(sourceText, document)
	if !report.IsValid {
		log.Info("pipeline: verification found mismatches",
			zap.Int("total", report.Summary.TotalErrors),
			zap.Int("auto_fixed", report.Summary.AutoFixed),
			zap.Int("needs_review", report.Summary.NeedsReview),
		)
		document = report.FixedDocument
	}

	if p.reviews != nil {
		if pending := report.NeedsReview(); len(pending) > 0 {
			if queueErr := p.reviews.QueueMismatches(ctx, orderCode, pending); queueErr != nil {
				log.Warn("pipeline: review queue push failed", zap.Error(queueErr))
			}
		}
	}

	// ===== Persist =====
	setStatus(model.RunStatusSaving, "저장 중...", nil)

	if commitErr := p.gateway.Commit(ctx, orderCode, document, report); commitErr != nil {
		return fail(commitErr, "저장 실패")
	}

	result := &model.RunResult{
		Document:      document,
		Sections:      sectionResults,
		VerifySummary: report.Summary,
		TotalUsage:    totalUsage,
		GeneratedAt:   p.now().UTC(),
	}
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	setStatus(model.RunStatusCompleted, "완료", map[string]any{
		"mdLength":    len(document),
		"verifyResult": report.Summary,
		"generatedAt": result.GeneratedAt.Format(time.RFC3339),
	})

	log.Info("pipeline: report generation complete",
		zap.String("run_id", run.ID),
		zap.Int("sections", len(sectionResults)),
		zap.Int("document_len", len(document)),
		zap.Int64("tokens", totalUsage.InputTokens+totalUsage.OutputTokens),
	)

	return result, nil
}
