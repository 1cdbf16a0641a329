package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/monitoring"
	"github.com/eunjilab/saju-admin/internal/persist"
	"github.com/eunjilab/saju-admin/internal/pipeline"
	"github.com/eunjilab/saju-admin/internal/review"
	"github.com/eunjilab/saju-admin/internal/status"
	"github.com/eunjilab/saju-admin/internal/store"
	anthropicpkg "github.com/eunjilab/saju-admin/pkg/anthropic"
	"github.com/eunjilab/saju-admin/pkg/notion"
	"github.com/eunjilab/saju-admin/pkg/sheets"
	"github.com/eunjilab/saju-admin/pkg/supabase"
)

// pipelineEnv holds all initialized clients and the pipeline needed by
// the generate/batch/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Collector *monitoring.Collector
	Sections  []model.SectionSpec
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "saju-admin.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and all API clients and builds the
// Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (SAJU_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	sections := model.DefaultSections()
	if cfg.Pipeline.SectionsFile != "" {
		sections, err = model.LoadSections(cfg.Pipeline.SectionsFile)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		zap.L().Info("loaded section table override",
			zap.String("file", cfg.Pipeline.SectionsFile),
			zap.Int("sections", len(sections)))
	}

	var records supabase.Client
	if cfg.Supabase.Configured() {
		records = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
	} else {
		zap.L().Warn("supabase not configured, order rows will not be updated")
	}

	var mirror sheets.Client
	if cfg.Sheets.WebhookURL != "" {
		mirror = sheets.NewClient(cfg.Sheets.WebhookURL)
	}

	var reviews pipeline.ReviewQueue
	if cfg.Notion.Token != "" && cfg.Notion.ReviewDB != "" {
		reviews = review.NewQueue(notion.NewClient(cfg.Notion.Token), cfg.Notion.ReviewDB)
		zap.L().Info("notion review queue enabled")
	}

	p := pipeline.New(
		cfg.Pipeline,
		cfg.Anthropic,
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		st,
		status.NewReporter(records),
		persist.NewGateway(records, mirror),
		reviews,
		sections,
	)

	return &pipelineEnv{
		Store:     st,
		Pipeline:  p,
		Collector: monitoring.NewCollector(st),
		Sections:  sections,
	}, nil
}
