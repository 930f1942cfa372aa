package extraction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/pkg/llm"
)

const (
	extractionTemperature = 0.2
	extractionMaxTokens   = 8192
	maxProviderRetries    = 2
)

// Engine turns a transcript into a validated extraction result. Provider
// failures fall through the provider chain; contract violations get exactly
// one repair attempt. Schema conformance is a hard gate: nothing invalid ever
// leaves this package.
type Engine struct {
	providers []llm.Provider // primary first, fallbacks after
	repair    llm.Provider
	metrics   repositories.MetricsSink
	logger    *zap.Logger
}

// NewEngine creates an extraction engine. providers must be non-empty and
// ordered primary-first; repair may equal a provider but should be a cheaper
// model.
func NewEngine(providers []llm.Provider, repair llm.Provider, metrics repositories.MetricsSink, logger *zap.Logger) *Engine {
	return &Engine{
		providers: providers,
		repair:    repair,
		metrics:   metrics,
		logger:    logger,
	}
}

// Extract runs the extraction protocol for a meeting against its grounding
// context and returns a contract-valid result or a typed terminal failure
func (e *Engine) Extract(ctx context.Context, meeting *entities.Meeting, contextRecords []entities.Record) (*entities.ExtractionResult, error) {
	prompt := BuildPrompt(meeting, contextRecords)

	raw, provider, err := e.completeWithFailover(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, violations := e.parseAndValidate(raw, meeting.Category)
	if len(violations) == 0 {
		e.logger.Info("✅ Extraction validated",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("model", provider.Name()),
			zap.Int("action_items", len(result.ActionItems)),
			zap.Int("decisions", len(result.Decisions)),
			zap.Int("risks", len(result.Risks)))
		return result, nil
	}

	e.logger.Warn("⚠️ Extraction violates contract, attempting repair",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("model", provider.Name()),
		zap.Strings("violations", violations))

	repaired, err := e.attemptRepair(ctx, raw, violations, meeting.Category)
	if err != nil {
		return nil, err
	}
	return repaired, nil
}

// completeWithFailover runs the prompt through the provider chain. Each
// provider gets a short retry budget for transient errors before the next
// provider takes over.
func (e *Engine) completeWithFailover(ctx context.Context, prompt string) (string, llm.Provider, error) {
	var lastErr error

	for i, provider := range e.providers {
		isFallback := i > 0
		raw, err := e.completeOnce(ctx, provider, prompt, isFallback)
		if err == nil {
			return raw, provider, nil
		}
		lastErr = err

		e.logger.Warn("❌ Provider failed",
			zap.String("model", provider.Name()),
			zap.Bool("is_fallback", isFallback),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	return "", nil, errors.ErrProvidersExhausted(lastErr)
}

// completeOnce calls one provider with bounded retries on transient errors
func (e *Engine) completeOnce(ctx context.Context, provider llm.Provider, prompt string, isFallback bool) (string, error) {
	var raw string

	operation := func() error {
		start := time.Now()
		content, err := provider.Complete(ctx, llm.CompletionRequest{
			System:      systemPrompt,
			Prompt:      prompt,
			Temperature: extractionTemperature,
			MaxTokens:   extractionMaxTokens,
		})
		e.recordAttempt(ctx, provider, isFallback, start, err)

		if err != nil {
			if llm.IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		raw = content
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxProviderRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return raw, nil
}

// attemptRepair gives the cheaper repair model one shot at fixing an invalid
// payload. A second contract failure is terminal.
func (e *Engine) attemptRepair(ctx context.Context, invalidPayload string, violations []string, category entities.MeetingCategory) (*entities.ExtractionResult, error) {
	prompt := BuildRepairPrompt(invalidPayload, violations, category)

	start := time.Now()
	raw, err := e.repair.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   extractionMaxTokens,
	})
	e.recordAttempt(ctx, e.repair, true, start, err)
	if err != nil {
		return nil, errors.ErrProvidersExhausted(err)
	}

	result, repairViolations := e.parseAndValidate(raw, category)
	if len(repairViolations) > 0 {
		e.logger.Error("❌ Repair output still violates contract",
			zap.String("model", e.repair.Name()),
			zap.Strings("violations", repairViolations))
		return nil, errors.ErrContractViolation(repairViolations)
	}

	e.logger.Info("✅ Repair produced a valid extraction", zap.String("model", e.repair.Name()))
	return result, nil
}

// parseAndValidate decodes and contract-checks a raw response. A parse
// failure is reported as a violation so the repair path handles it uniformly.
func (e *Engine) parseAndValidate(raw string, category entities.MeetingCategory) (*entities.ExtractionResult, []string) {
	result, err := ParseResult(raw)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return result, Validate(result, category)
}

func (e *Engine) recordAttempt(ctx context.Context, provider llm.Provider, isFallback bool, start time.Time, err error) {
	attempt := entities.ModelAttempt{
		Model:      provider.Name(),
		IsFallback: isFallback,
		Success:    err == nil,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		attempt.Error = err.Error()
	}
	e.metrics.RecordAttempt(ctx, attempt)
}
