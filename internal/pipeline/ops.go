package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

// SectionOutput is the result of a synchronous single-section request.
type SectionOutput struct {
	Success     bool             `json:"success"`
	SectionID   string           `json:"sectionId"`
	SectionName string           `json:"sectionName"`
	Content     string           `json:"content"`
	StopReason  string           `json:"stopReason,omitempty"`
	Usage       model.TokenUsage `json:"usage"`
	Skipped     bool             `json:"skipped,omitempty"`
}

// GenerateSection produces one section in a single completion call, for
// the synchronous editing surface. A premium-only section requested for a
// non-premium customer is skipped, not an error. Unlike Run, upstream
// failures surface directly to the caller.
func (p *Pipeline) GenerateSection(ctx context.Context, customer model.Customer, sectionID, previousContent string) (*SectionOutput, error) {
	section, ok := model.FindSection(p.sections, sectionID)
	if !ok {
		return nil, eris.Errorf("unknown section: %s", sectionID)
	}

	if section.PremiumOnly && customer.Package != model.PackagePremium {
		return &SectionOutput{Success: true, SectionID: sectionID, Skipped: true}, nil
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.anthropicCfg.Model,
		MaxTokens: p.anthropicCfg.MaxTokens,
		System:    systemPromptFor(sectionID),
		Messages: []anthropic.Message{
			anthropic.UserMessage(buildUserPrompt(customer, section, summarizePrevious(previousContent), "")),
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "generate section %s", sectionID)
	}

	return &SectionOutput{
		Success:     true,
		SectionID:   sectionID,
		SectionName: section.Name,
		Content:     resp.Text,
		StopReason:  resp.StopReason,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// Modify rewrites an existing report per the user's request, keeping all
// precomputed values intact. Single-shot; not part of the run state
// machine.
func (p *Pipeline) Modify(ctx context.Context, previousMd, modificationRequest string) (string, error) {
	userPrompt := fmt.Sprintf(`다음은 기존에 생성된 사주 보고서입니다:

%s

사용자의 수정 요청:
%s

위 요청에 따라 보고서를 수정해주세요. 전체 마크다운 형식을 유지하면서 수정된 버전을 출력해주세요.
⚠️ 계산 결과(대운, 인연상, 신살 등)는 절대 변경하지 마세요.`, previousMd, modificationRequest)

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.anthropicCfg.Model,
		MaxTokens: p.anthropicCfg.MaxTokens,
		System:    modifySystemPrompt,
		Messages:  []anthropic.Message{anthropic.UserMessage(userPrompt)},
	})
	if err != nil {
		return "", eris.Wrap(err, "modify report")
	}
	return resp.Text, nil
}

// Review produces a structured critique of an existing report against the
// customer's calculation blobs. Single-shot.
func (p *Pipeline) Review(ctx context.Context, previousMd string, customer model.Customer) (string, error) {
	userPrompt := fmt.Sprintf(`다음 사주 보고서를 검토해주세요:

%s

## 원본 계산 데이터 (검증용)
%s

%s

위 보고서가 원본 계산 데이터와 일치하는지, 그리고 작성 규칙을 잘 따랐는지 검토해주세요.`,
		previousMd, orNone(customer.SajuResult), customer.InyeonResult)

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.anthropicCfg.Model,
		MaxTokens: p.anthropicCfg.MaxTokens,
		System:    reviewSystemPrompt,
		Messages:  []anthropic.Message{anthropic.UserMessage(userPrompt)},
	})
	if err != nil {
		return "", eris.Wrap(err, "review report")
	}
	return resp.Text, nil
}

// Sections exposes the active section table (for the sections-info
// endpoint).
func (p *Pipeline) Sections() []model.SectionSpec {
	return p.sections
}
