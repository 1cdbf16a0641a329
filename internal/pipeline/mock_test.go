package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/store"
	"github.com/eunjilab/saju-admin/internal/verify"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
	"github.com/eunjilab/saju-admin/pkg/supabase"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, orderCode string, customer model.Customer) (*model.Run, error) {
	args := m.Called(ctx, orderCode, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, message string) error {
	args := m.Called(ctx, runID, status, message)
	return args.Error(0)
}

func (m *mockStore) UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) GetRunByOrder(ctx context.Context, orderCode string) (*model.Run, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Review Queue Mock ---

type mockReviewQueue struct {
	mock.Mock
}

func (m *mockReviewQueue) QueueMismatches(ctx context.Context, orderCode string, mismatches []verify.Mismatch) error {
	args := m.Called(ctx, orderCode, mismatches)
	return args.Error(0)
}

// --- Record Store Mock ---

type mockRecords struct {
	mock.Mock
}

func (m *mockRecords) PatchOrder(ctx context.Context, orderCode string, fields map[string]any) error {
	args := m.Called(ctx, orderCode, fields)
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ anthropic.Client = (*mockAnthropicClient)(nil)
	_ store.Store      = (*mockStore)(nil)
	_ ReviewQueue      = (*mockReviewQueue)(nil)
	_ supabase.Client  = (*mockRecords)(nil)
)
