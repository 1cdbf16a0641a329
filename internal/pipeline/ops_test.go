package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

func TestGenerateSectionOp(t *testing.T) {
	var req anthropic.MessageRequest
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Run(func(args mock.Arguments) {
			req = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(sectionResponse("신살 분석 내용입니다.", "end_turn"), nil)

	p, _ := newTestPipeline(client, &mockStore{}, nil)

	out, err := p.GenerateSection(context.Background(), testCustomer(model.PackageStandard), "sinsal", "이전 섹션 내용")
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "sinsal", out.SectionID)
	assert.Equal(t, "신살+격국", out.SectionName)
	assert.Equal(t, "신살 분석 내용입니다.", out.Content)
	assert.Equal(t, "end_turn", out.StopReason)
	assert.False(t, out.Skipped)
	assert.Equal(t, model.TokenUsage{InputTokens: 100, OutputTokens: 50}, out.Usage)

	assert.Contains(t, req.System, "신살")
	assert.Contains(t, req.Messages[0].Content, "김철수")
}

func TestGenerateSectionOpUnknownID(t *testing.T) {
	p, _ := newTestPipeline(&mockAnthropicClient{}, &mockStore{}, nil)

	_, err := p.GenerateSection(context.Background(), testCustomer(model.PackageStandard), "nonexistent", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section: nonexistent")
}

func TestGenerateSectionOpSkipsPremiumForStandard(t *testing.T) {
	client := &mockAnthropicClient{}
	p, _ := newTestPipeline(client, &mockStore{}, nil)

	out, err := p.GenerateSection(context.Background(), testCustomer(model.PackageStandard), "inyeon", "")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.Skipped)
	assert.Empty(t, out.Content)
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestGenerateSectionOpUpstreamErrorSurfaces(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(nil, errors.New("overloaded"))

	p, _ := newTestPipeline(client, &mockStore{}, nil)

	_, err := p.GenerateSection(context.Background(), testCustomer(model.PackageStandard), "intro", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate section intro")
}

func TestModify(t *testing.T) {
	var req anthropic.MessageRequest
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Run(func(args mock.Arguments) {
			req = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(sectionResponse("수정된 보고서 전문", "end_turn"), nil)

	p, _ := newTestPipeline(client, &mockStore{}, nil)

	out, err := p.Modify(context.Background(), "# 기존 보고서", "말투를 부드럽게 바꿔주세요")
	require.NoError(t, err)
	assert.Equal(t, "수정된 보고서 전문", out)

	assert.Equal(t, modifySystemPrompt, req.System)
	assert.Contains(t, req.Messages[0].Content, "# 기존 보고서")
	assert.Contains(t, req.Messages[0].Content, "말투를 부드럽게 바꿔주세요")
}

func TestReview(t *testing.T) {
	var req anthropic.MessageRequest
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Run(func(args mock.Arguments) {
			req = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(sectionResponse("### 검토 결과\n#### ✅ 정상", "end_turn"), nil)

	p, _ := newTestPipeline(client, &mockStore{}, nil)

	customer := testCustomer(model.PackagePremium)
	customer.InyeonResult = "인연수: 7"

	out, err := p.Review(context.Background(), "# 보고서", customer)
	require.NoError(t, err)
	assert.Contains(t, out, "검토 결과")

	assert.Equal(t, reviewSystemPrompt, req.System)
	assert.Contains(t, req.Messages[0].Content, "# 보고서")
	assert.Contains(t, req.Messages[0].Content, testSajuBlob)
	assert.Contains(t, req.Messages[0].Content, "인연수: 7")
}

func TestSectionsExposesTable(t *testing.T) {
	p, _ := newTestPipeline(&mockAnthropicClient{}, &mockStore{}, nil)

	sections := p.Sections()
	require.Len(t, sections, 7)
	assert.Equal(t, "intro", sections[0].ID)
	assert.Equal(t, "ending", sections[6].ID)
}
