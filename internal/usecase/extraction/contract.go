package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// ParseResult decodes the assistant's text into an extraction result. Models
// routinely wrap JSON in markdown fences despite instructions, so the fences
// are stripped first.
func ParseResult(raw string) (*entities.ExtractionResult, error) {
	cleaned := extractJSON(raw)

	var result entities.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return &result, nil
}

// Validate checks a parsed result against the output contract for the given
// meeting category. It returns every violation found, not just the first, so
// the repair prompt can fix them all in one pass. An empty slice means the
// result is valid.
func Validate(result *entities.ExtractionResult, category entities.MeetingCategory) []string {
	var violations []string

	if result.Recap == "" {
		violations = append(violations, "recap is required and must be non-empty")
	}

	if !result.Tone.Label.IsValid() {
		violations = append(violations, fmt.Sprintf(
			"tone.label %q is not one of: positive, neutral, mixed, tense", result.Tone.Label))
	}
	if result.Tone.Score < -1 || result.Tone.Score > 1 {
		violations = append(violations, fmt.Sprintf(
			"tone.score %.2f is outside [-1, 1]", result.Tone.Score))
	}

	if result.Metadata.Category != "" && !entities.MeetingCategory(result.Metadata.Category).IsValid() {
		violations = append(violations, fmt.Sprintf(
			"metadata.category %q is not a known meeting category", result.Metadata.Category))
	}

	for kind, items := range result.ItemsByKind() {
		for i, item := range items {
			violations = append(violations, validateItem(kind, i, item)...)
		}
	}

	// Fishbone presence is tied to the meeting category exactly: required for
	// incident reviews and postmortems, forbidden otherwise.
	if category.RequiresFishbone() {
		if result.Fishbone == nil {
			violations = append(violations, fmt.Sprintf(
				"fishbone is required for category %q", category))
		} else {
			if result.Fishbone.ProblemStatement == "" {
				violations = append(violations, "fishbone.problem_statement is required")
			}
			if len(result.Fishbone.Categories) == 0 {
				violations = append(violations, "fishbone.categories must not be empty")
			}
		}
	} else if result.Fishbone != nil {
		violations = append(violations, fmt.Sprintf(
			"fishbone must be omitted for category %q", category))
	}

	return violations
}

func validateItem(kind entities.RecordKind, index int, item entities.ProposedItem) []string {
	var violations []string
	label := fmt.Sprintf("%ss[%d]", kind, index)

	if !item.Operation.IsValid() {
		violations = append(violations, fmt.Sprintf(
			"%s.operation %q is not one of: create, update, close", label, item.Operation))
	}

	if item.Title == "" {
		violations = append(violations, fmt.Sprintf("%s.title is required", label))
	}

	if len(item.Evidence) == 0 {
		violations = append(violations, fmt.Sprintf(
			"%s.evidence must contain at least one quote", label))
	}
	for j, ev := range item.Evidence {
		if ev.Quote == "" {
			violations = append(violations, fmt.Sprintf(
				"%s.evidence[%d].quote must be non-empty", label, j))
		}
	}

	// Every mutation must name the record it mutates.
	if item.Operation != entities.OperationCreate {
		if item.TargetRecordID == "" {
			violations = append(violations, fmt.Sprintf(
				"%s.target_record_id is required for operation %q", label, item.Operation))
		} else if _, err := uuid.Parse(item.TargetRecordID); err != nil {
			violations = append(violations, fmt.Sprintf(
				"%s.target_record_id %q is not a valid id", label, item.TargetRecordID))
		}
	}

	if item.SupersedesRecordID != "" {
		if kind != entities.RecordKindDecision {
			violations = append(violations, fmt.Sprintf(
				"%s.supersedes_record_id is only valid on decisions", label))
		} else if _, err := uuid.Parse(item.SupersedesRecordID); err != nil {
			violations = append(violations, fmt.Sprintf(
				"%s.supersedes_record_id %q is not a valid id", label, item.SupersedesRecordID))
		}
	}

	return violations
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
