package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for report generation requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, env, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API. baseCtx outlives individual requests and
// is handed to detached generation runs.
func newRouter(baseCtx context.Context, env *pipelineEnv, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/generate", handleGenerate(baseCtx, env))
	r.Post("/sections", handleSections(env))
	r.Get("/sections/info", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sections": env.Sections})
	})

	r.Get("/runs", handleListRuns(env))
	r.Get("/runs/{id}", handleGetRun(env))
	r.Get("/runs/{id}/preview", handlePreview(env))
	r.Get("/stats", handleStats(env))

	return r
}

// generateRequest is the trigger payload: the order code, the nested
// customer record, and an optional prompt blob that replaces the
// customer's calculation result.
type generateRequest struct {
	OrderCode string         `json:"orderCode"`
	Customer  model.Customer `json:"customer"`
	Prompt    string         `json:"prompt,omitempty"`
}

func handleGenerate(baseCtx context.Context, env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.OrderCode == "" {
			writeError(w, http.StatusBadRequest, "orderCode is required")
			return
		}
		if err := req.Customer.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Run generation detached from the request; status is observable
		// through the run store and the order row.
		go func() {
			result, err := env.Pipeline.Run(baseCtx, req.OrderCode, req.Customer, req.Prompt)
			if err != nil {
				zap.L().Error("generation failed",
					zap.String("orderCode", req.OrderCode),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("generation complete",
				zap.String("orderCode", req.OrderCode),
				zap.Int("length", len(result.Document)),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":    "accepted",
			"orderCode": req.OrderCode,
		})
	}
}

// sectionsRequest covers the synchronous single-shot actions.
type sectionsRequest struct {
	Action string `json:"action"`

	// action=section
	SectionID       string `json:"section,omitempty"`
	PreviousContent string `json:"previousContent,omitempty"`

	// action=modify / review
	PreviousMd          string `json:"previousMd,omitempty"`
	ModificationRequest string `json:"modificationRequest,omitempty"`

	Customer model.Customer `json:"customer"`
}

func handleSections(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sectionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx := r.Context()
		switch req.Action {
		case "section":
			out, err := env.Pipeline.GenerateSection(ctx, req.Customer, req.SectionID, req.PreviousContent)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, out)

		case "modify":
			content, err := env.Pipeline.Modify(ctx, req.PreviousMd, req.ModificationRequest)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})

		case "review":
			content, err := env.Pipeline.Review(ctx, req.PreviousMd, req.Customer)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})

		case "sections-info":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "sections": env.Sections})

		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action: %s", req.Action))
		}
	}
}

func handleListRuns(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))

		runs, err := env.Store.ListRuns(r.Context(), store.RunFilter{
			Status:    model.RunStatus(q.Get("status")),
			OrderCode: q.Get("order"),
			Limit:     limit,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
	}
}

func handleGetRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// handlePreview renders a completed run's markdown document as HTML.
func handlePreview(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if run.Result == nil || run.Result.Document == "" {
			writeError(w, http.StatusConflict, "run has no document yet")
			return
		}

		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(run.Result.Document), &buf); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func handleStats(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lookback, _ := strconv.Atoi(r.URL.Query().Get("hours"))
		if lookback <= 0 {
			lookback = 24
		}

		snap, err := env.Collector.Collect(r.Context(), lookback)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
