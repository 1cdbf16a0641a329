package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/eunjilab/saju-admin/internal/config"
	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/persist"
	"github.com/eunjilab/saju-admin/internal/status"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

const testSajuBlob = `이름: 김철수
목: 2
화: 3
토: 2
금: 1
수: 0
신살: 천을귀인, 도화살
`

func testCustomer(pkg model.Package) model.Customer {
	return model.Customer{
		Name:       "김철수",
		BirthYear:  1990,
		BirthMonth: 3,
		BirthDay:   15,
		Gender:     "M",
		Package:    pkg,
		SajuResult: testSajuBlob,
	}
}

// sleepRecorder replaces the pipeline's backoff sleep so rate-limit tests
// assert wait durations instead of actually waiting.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

// newTestPipeline wires a Pipeline over mocks with the backoff sleep and
// clock pinned. Reporter and gateway run unconfigured (nil sinks) unless a
// test swaps them in afterwards.
func newTestPipeline(client *mockAnthropicClient, st *mockStore, reviews ReviewQueue) (*Pipeline, *sleepRecorder) {
	p := New(
		config.PipelineConfig{MaxContinuations: 3, MaxRateLimitAttempts: 3},
		config.AnthropicConfig{Model: "claude-sonnet-4-5", MaxTokens: 8192},
		client,
		st,
		status.NewReporter(nil),
		persist.NewGateway(nil, nil),
		reviews,
		model.DefaultSections(),
	)
	rec := &sleepRecorder{}
	p.sleep = rec.sleep
	p.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p, rec
}

// expectRunBookkeeping registers the store calls every successful or failed
// run performs, recording status transitions into the returned slice.
func expectRunBookkeeping(st *mockStore, runID string, statuses *[]model.RunStatus) {
	st.On("CreateRun", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("model.Customer")).
		Return(&model.Run{ID: runID, Status: model.RunStatusQueued}, nil)
	st.On("UpdateRunStatus", mock.Anything, runID, mock.AnythingOfType("model.RunStatus"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			*statuses = append(*statuses, args.Get(2).(model.RunStatus))
		}).
		Return(nil)
	st.On("UpdateRunResult", mock.Anything, runID, mock.AnythingOfType("*model.RunResult")).
		Return(nil).Maybe()
}

func sectionResponse(text, stopReason string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:         "msg_test",
		Model:      "claude-sonnet-4-5",
		Text:       text,
		StopReason: stopReason,
		Usage:      anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}
