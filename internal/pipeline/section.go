package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/pkg/anthropic"
)

// sectionComplete reports whether the accumulated text ends the section.
// The closing section carries an explicit close tag; all others end with a
// divider or a done tag inside the trailing window. The divider check can
// in principle false-positive on a divider the model emits mid-prose;
// behavior kept as the report templates were tuned against.
func sectionComplete(content, sectionID string) bool {
	if sectionID == "ending" {
		return strings.Contains(content, endingCloseTag)
	}

	tail := content
	if len(tail) > completionWindow {
		tail = tail[len(tail)-completionWindow:]
	}
	return strings.Contains(tail, sectionDivider) || strings.Contains(tail, sectionDoneTag)
}

// generateSection runs the continuation loop for one section: call the
// completion service, append, and keep asking it to continue until a
// sentinel or natural stop, bounded by MaxContinuations. Exhausting the
// bound returns the partial text marked incomplete rather than failing
// the run; partial content beats no content.
func (p *Pipeline) generateSection(ctx context.Context, c model.Customer, section model.SectionSpec, previousContent, promptOverride string) (*model.SectionResult, error) {
	log := zap.L().With(zap.String("section", section.ID))

	userPrompt := buildUserPrompt(c, section, summarizePrevious(previousContent), promptOverride)

	result := &model.SectionResult{SectionID: section.ID}
	var accumulated strings.Builder

	for attempt := 0; attempt <= p.cfg.MaxContinuations; attempt++ {
		messages := []anthropic.Message{anthropic.UserMessage(userPrompt)}
		if accumulated.Len() > 0 {
			messages = append(messages,
				anthropic.AssistantMessage(accumulated.String()),
				anthropic.UserMessage(continuePrompt),
			)
		}

		resp, err := p.complete(ctx, anthropic.MessageRequest{
			Model:     p.anthropicCfg.Model,
			MaxTokens: p.anthropicCfg.MaxTokens,
			System:    systemPromptFor(section.ID),
			Messages:  messages,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "section %s", section.ID)
		}

		accumulated.WriteString(resp.Text)
		result.Usage.Add(model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		})
		result.RetriesUsed = attempt

		if sectionComplete(accumulated.String(), section.ID) || resp.NaturalStop() {
			result.Content = accumulated.String()
			return result, nil
		}

		log.Info("section truncated, continuing",
			zap.Int("attempt", attempt+1),
			zap.String("stop_reason", resp.StopReason),
		)
	}

	log.Warn("section incomplete after continuation limit",
		zap.Int("limit", p.cfg.MaxContinuations),
	)
	result.Content = accumulated.String()
	result.Incomplete = true
	return result, nil
}

// complete invokes the completion service with rate-limit retry. A
// rate-limited call sleeps 60s * attempt and tries again up to the
// configured ceiling; every other error class aborts immediately.
// Exhausting the ceiling is fatal to the caller.
func (p *Pipeline) complete(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	maxAttempts := p.cfg.MaxRateLimitAttempts
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := p.client.CreateMessage(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if anthropic.KindOf(err) != anthropic.KindRateLimited {
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		wait := time.Duration(attempt) * 60 * time.Second
		zap.L().Warn("rate limited, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
		if err := p.sleep(ctx, wait); err != nil {
			return nil, eris.Wrap(err, "backoff interrupted")
		}
	}

	return nil, eris.Wrapf(lastErr, "rate limit retries exhausted after %d attempts", maxAttempts)
}
