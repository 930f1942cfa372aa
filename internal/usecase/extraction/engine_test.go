package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/pkg/llm"
)

const validPayload = `{
	"metadata": {"title": "Standup", "category": "standup", "date": "2026-08-27", "participants": ["Alice"]},
	"recap": "Quick standup, one new action item.",
	"tone": {"label": "positive", "score": 0.5},
	"action_items": [{
		"operation": "create",
		"title": "Update the runbook",
		"owner": {"name": "Alice"},
		"evidence": [{"quote": "Alice said she would update the runbook."}]
	}],
	"decisions": [],
	"risks": []
}`

const invalidPayload = `{
	"metadata": {"title": "Standup", "category": "standup", "date": "2026-08-27", "participants": []},
	"recap": "",
	"tone": {"label": "positive", "score": 0.5},
	"action_items": [],
	"decisions": [],
	"risks": []
}`

type scriptedProvider struct {
	name      string
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (p *scriptedProvider) Name() string { return p.name }

type capturingSink struct {
	attempts []entities.ModelAttempt
}

func (s *capturingSink) RecordAttempt(ctx context.Context, attempt entities.ModelAttempt) {
	s.attempts = append(s.attempts, attempt)
}

func testMeeting(category entities.MeetingCategory) *entities.Meeting {
	return entities.NewMeeting(
		uuid.New(), "Standup", category, time.Now(),
		[]entities.Attendee{{Name: "Alice", Email: "alice@co.com"}},
		"Alice said she would update the runbook.")
}

func TestExtractHappyPath(t *testing.T) {
	primary := &scriptedProvider{name: "groq:primary", responses: []string{validPayload}}
	sink := &capturingSink{}
	engine := NewEngine([]llm.Provider{primary}, &scriptedProvider{name: "repair"}, sink, zap.NewNop())

	result, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.NoError(t, err)

	assert.Len(t, result.ActionItems, 1)
	require.Len(t, sink.attempts, 1)
	assert.True(t, sink.attempts[0].Success)
	assert.False(t, sink.attempts[0].IsFallback)
	assert.Equal(t, "groq:primary", sink.attempts[0].Model)
}

func TestExtractFailsOverToSecondaryProvider(t *testing.T) {
	// Non-retryable failure on the primary moves straight to the fallback.
	primary := &scriptedProvider{name: "groq:primary", errs: []error{errors.New("invalid api key")}}
	fallback := &scriptedProvider{name: "gemini:fallback", responses: []string{validPayload}}
	sink := &capturingSink{}
	engine := NewEngine([]llm.Provider{primary, fallback}, &scriptedProvider{name: "repair"}, sink, zap.NewNop())

	result, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.NoError(t, err)
	assert.Len(t, result.ActionItems, 1)

	require.Len(t, sink.attempts, 2)
	assert.False(t, sink.attempts[0].Success)
	assert.True(t, sink.attempts[1].Success)
	assert.True(t, sink.attempts[1].IsFallback)
}

func TestExtractRetriesTransientErrorOnSameProvider(t *testing.T) {
	primary := &scriptedProvider{
		name:      "groq:primary",
		errs:      []error{errors.New("status 429 too many requests"), nil},
		responses: []string{"", validPayload},
	}
	sink := &capturingSink{}
	engine := NewEngine([]llm.Provider{primary}, &scriptedProvider{name: "repair"}, sink, zap.NewNop())

	_, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls)
}

func TestExtractAllProvidersExhausted(t *testing.T) {
	primary := &scriptedProvider{name: "groq:primary", errs: []error{errors.New("invalid api key")}}
	fallback := &scriptedProvider{name: "gemini:fallback", errs: []error{errors.New("billing disabled")}}
	engine := NewEngine([]llm.Provider{primary, fallback}, &scriptedProvider{name: "repair"}, &capturingSink{}, zap.NewNop())

	_, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.Error(t, err)

	var appErr apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorCode_EXTRACTION_PROVIDERS_EXHAUSTED, appErr.Code)
}

func TestExtractRepairsInvalidOutput(t *testing.T) {
	primary := &scriptedProvider{name: "groq:primary", responses: []string{invalidPayload}}
	repair := &scriptedProvider{name: "groq:repair", responses: []string{validPayload}}
	sink := &capturingSink{}
	engine := NewEngine([]llm.Provider{primary}, repair, sink, zap.NewNop())

	result, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.NoError(t, err)
	assert.Equal(t, "Quick standup, one new action item.", result.Recap)

	assert.Equal(t, 1, repair.calls)
	require.Len(t, sink.attempts, 2)
	assert.Equal(t, "groq:repair", sink.attempts[1].Model)
}

func TestExtractFailsWhenRepairStillInvalid(t *testing.T) {
	primary := &scriptedProvider{name: "groq:primary", responses: []string{invalidPayload}}
	repair := &scriptedProvider{name: "groq:repair", responses: []string{invalidPayload}}
	engine := NewEngine([]llm.Provider{primary}, repair, &capturingSink{}, zap.NewNop())

	_, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.Error(t, err)

	var appErr apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorCode_EXTRACTION_CONTRACT_VIOLATION, appErr.Code)
	// Exactly one repair attempt, never a loop.
	assert.Equal(t, 1, repair.calls)
}

func TestExtractRepairHandlesUnparseableOutput(t *testing.T) {
	primary := &scriptedProvider{name: "groq:primary", responses: []string{"Sorry, I cannot help with that."}}
	repair := &scriptedProvider{name: "groq:repair", responses: []string{validPayload}}
	engine := NewEngine([]llm.Provider{primary}, repair, &capturingSink{}, zap.NewNop())

	result, err := engine.Extract(context.Background(), testMeeting(entities.MeetingCategoryStandup), nil)
	require.NoError(t, err)
	assert.Len(t, result.ActionItems, 1)
}
