package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunjilab/saju-admin/internal/config"
	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/monitoring"
	"github.com/eunjilab/saju-admin/internal/persist"
	"github.com/eunjilab/saju-admin/internal/pipeline"
	"github.com/eunjilab/saju-admin/internal/status"
	"github.com/eunjilab/saju-admin/internal/store"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

// stubAnthropic returns a fixed completion for every call.
type stubAnthropic struct {
	text string
	err  error
}

func (s *stubAnthropic) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Text:       s.text,
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	sections := model.DefaultSections()
	p := pipeline.New(
		config.PipelineConfig{MaxContinuations: 1, MaxRateLimitAttempts: 1},
		config.AnthropicConfig{Model: "claude-sonnet-4-5", MaxTokens: 1024},
		&stubAnthropic{text: "섹션 내용입니다.\n\n---"},
		st,
		status.NewReporter(nil),
		persist.NewGateway(nil, nil),
		nil,
		sections,
	)

	return &pipelineEnv{
		Store:     st,
		Pipeline:  p,
		Collector: monitoring.NewCollector(st),
		Sections:  sections,
	}
}

func newTestRouter(t *testing.T) (http.Handler, *pipelineEnv) {
	t.Helper()
	env := newTestEnv(t)
	return newRouter(context.Background(), env, []string{"*"}), env
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getPath(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := getPath(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSectionsInfoEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := getPath(router, "/sections/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool                `json:"success"`
		Sections []model.SectionSpec `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Sections, 7)
}

func TestGenerateRequiresOrderCode(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/generate", map[string]any{
		"customer": map[string]any{
			"name": "김철수", "birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"gender": "M", "package": "standard",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "orderCode is required")
}

func TestGenerateRejectsInvalidCustomer(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/generate", map[string]any{
		"orderCode": "ORD-5001",
		"customer": map[string]any{
			"birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"package": "standard",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestGenerateAccepted(t *testing.T) {
	router, _ := newTestRouter(t)

	// Trigger body: order code, nested customer, optional prompt blob.
	rec := postJSON(t, router, "/generate", map[string]any{
		"orderCode": "ORD-5002",
		"customer": map[string]any{
			"name": "김철수", "birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"gender": "M", "package": "light",
			"sajuResult": "목: 2\n화: 3\n",
		},
		"prompt": "이름: 김철수\n목: 2\n화: 3\n",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, "ORD-5002", body["orderCode"])
}

func TestSectionsSectionAction(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/sections", map[string]any{
		"action":  "section",
		"section": "intro",
		"customer": map[string]any{
			"name": "김철수", "birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"gender": "M", "package": "standard",
			"sajuResult": "목: 2\n화: 3\n",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success     bool   `json:"success"`
		SectionID   string `json:"sectionId"`
		SectionName string `json:"sectionName"`
		Content     string `json:"content"`
		StopReason  string `json:"stopReason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "intro", body.SectionID)
	assert.NotEmpty(t, body.SectionName)
	assert.Equal(t, "섹션 내용입니다.\n\n---", body.Content)
	assert.Equal(t, "end_turn", body.StopReason)
}

func TestSectionsSectionActionSkipsPremiumOnly(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/sections", map[string]any{
		"action":  "section",
		"section": "inyeon",
		"customer": map[string]any{
			"name": "김철수", "birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"gender": "M", "package": "standard",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
		Skipped bool   `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Skipped)
	assert.Empty(t, body.Content)
}

func TestSectionsModifyAction(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/sections", map[string]any{
		"action":              "modify",
		"previousMd":          "# 기존 보고서",
		"modificationRequest": "말투를 바꿔주세요",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "섹션 내용입니다.\n\n---", body.Content)
}

func TestSectionsUnknownAction(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/sections", map[string]any{"action": "frobnicate"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown action: frobnicate")
}

func TestListRunsEndpoint(t *testing.T) {
	router, env := newTestRouter(t)

	customer := model.Customer{
		Name: "김철수", BirthYear: 1990, BirthMonth: 3, BirthDay: 15,
		Gender: "M", Package: model.PackageStandard,
	}
	_, err := env.Store.CreateRun(context.Background(), "ORD-5003", customer)
	require.NoError(t, err)

	rec := getPath(router, "/runs?order=ORD-5003")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs  []model.Run `json:"runs"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "ORD-5003", body.Runs[0].OrderCode)
}

func TestGetRunEndpoint(t *testing.T) {
	router, env := newTestRouter(t)

	customer := model.Customer{
		Name: "김철수", BirthYear: 1990, BirthMonth: 3, BirthDay: 15,
		Gender: "M", Package: model.PackageStandard,
	}
	run, err := env.Store.CreateRun(context.Background(), "ORD-5004", customer)
	require.NoError(t, err)

	rec := getPath(router, "/runs/"+run.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
}

func TestGetRunEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := getPath(router, "/runs/nonexistent")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	router, env := newTestRouter(t)

	customer := model.Customer{
		Name: "김철수", BirthYear: 1990, BirthMonth: 3, BirthDay: 15,
		Gender: "M", Package: model.PackageStandard,
	}
	run, err := env.Store.CreateRun(context.Background(), "ORD-5005", customer)
	require.NoError(t, err)
	require.NoError(t, env.Store.UpdateRunResult(context.Background(), run.ID, &model.RunResult{
		Document:    "# 사주 보고서\n\n본문입니다.",
		GeneratedAt: time.Now().UTC(),
	}))

	rec := getPath(router, "/runs/"+run.ID+"/preview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "사주 보고서")
}

func TestPreviewEndpointNoDocument(t *testing.T) {
	router, env := newTestRouter(t)

	customer := model.Customer{
		Name: "김철수", BirthYear: 1990, BirthMonth: 3, BirthDay: 15,
		Gender: "M", Package: model.PackageStandard,
	}
	run, err := env.Store.CreateRun(context.Background(), "ORD-5006", customer)
	require.NoError(t, err)

	rec := getPath(router, "/runs/"+run.ID+"/preview")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "run has no document yet")
}

func TestStatsEndpoint(t *testing.T) {
	router, env := newTestRouter(t)

	customer := model.Customer{
		Name: "김철수", BirthYear: 1990, BirthMonth: 3, BirthDay: 15,
		Gender: "M", Package: model.PackageStandard,
	}
	_, err := env.Store.CreateRun(context.Background(), "ORD-5007", customer)
	require.NoError(t, err)

	rec := getPath(router, "/stats?hours=48")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap monitoring.MetricsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.RunsTotal)
	assert.Equal(t, 48, snap.LookbackHours)
}
