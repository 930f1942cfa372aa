package extraction

import (
	"fmt"
	"strings"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

const systemPrompt = `You are a meeting analyst. You read a meeting transcript and produce a single JSON object describing the meeting's outcomes. Respond with JSON only, no markdown fences, no commentary.`

const contractDescription = `Output JSON schema (all fields required unless marked optional):
{
  "metadata": {"title": string, "category": string, "date": string, "participants": [string]},
  "recap": string (a narrative summary, non-empty),
  "tone": {"label": "positive"|"neutral"|"mixed"|"tense", "score": number in [-1,1], "notes": string (optional)},
  "action_items": [ProposedItem],
  "decisions": [ProposedItem],
  "risks": [ProposedItem],
  "fishbone": {"problem_statement": string, "categories": [{"name": string, "causes": [string]}]}
}

ProposedItem:
{
  "operation": "create"|"update"|"close",
  "target_record_id": string (required for update/close: the id of the existing record from EXISTING RECORDS below),
  "title": string (non-empty),
  "description": string (optional),
  "owner": {"name": string, "email": string (optional)},
  "evidence": [{"quote": string (non-empty, verbatim from transcript), "speaker": string (optional), "timestamp": string (optional)}] (at least one),
  "due_date_hint": string (optional, e.g. "by Friday"),
  "priority": string (optional: low|medium|high),
  "supersedes_record_id": string (optional, decisions only: the id of the decision this one replaces)
}

Rules:
- Every action_item, decision, and risk must carry at least one evidence quote taken verbatim from the transcript.
- Use "update" or "close" with a target_record_id when the transcript clearly refers to one of the EXISTING RECORDS; otherwise use "create".
- When a new decision explicitly replaces an existing one, set supersedes_record_id.`

// BuildPrompt assembles the extraction prompt: the contract, the meeting
// header, the grounding context, and the transcript
func BuildPrompt(meeting *entities.Meeting, contextRecords []entities.Record) string {
	var sb strings.Builder

	sb.WriteString(contractDescription)
	sb.WriteString("\n\n")

	if meeting.Category.RequiresFishbone() {
		sb.WriteString(fmt.Sprintf("This is a %s meeting: the \"fishbone\" root-cause outline is REQUIRED.\n\n", meeting.Category))
	} else {
		sb.WriteString("Omit the \"fishbone\" field entirely for this meeting category.\n\n")
	}

	sb.WriteString("MEETING\n")
	sb.WriteString(fmt.Sprintf("Title: %s\nCategory: %s\nDate: %s\n",
		meeting.Title, meeting.Category, meeting.MeetingDate.Format("2006-01-02")))

	sb.WriteString("Attendees:\n")
	for _, attendee := range meeting.Attendees {
		if attendee.Email != "" {
			sb.WriteString(fmt.Sprintf("- %s <%s>\n", attendee.Name, attendee.Email))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", attendee.Name))
		}
	}

	sb.WriteString("\nEXISTING RECORDS (open action items, decisions, and risks of this project; reference these ids for update/close):\n")
	if len(contextRecords) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, record := range contextRecords {
		sb.WriteString(formatContextRecord(record))
	}

	sb.WriteString("\nTRANSCRIPT\n")
	sb.WriteString(meeting.Transcript)

	return sb.String()
}

func formatContextRecord(record entities.Record) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- [%s] id=%s status=%s title=%q",
		record.Kind, record.ID, record.Status, record.Title))
	if record.OwnerName != "" {
		sb.WriteString(fmt.Sprintf(" owner=%q", record.OwnerName))
	}
	sb.WriteString("\n")
	return sb.String()
}

// BuildRepairPrompt asks the repair model to fix an invalid payload. The
// invalid output and the exact violations go in so the model can correct all
// of them in one pass.
func BuildRepairPrompt(invalidPayload string, violations []string, category entities.MeetingCategory) string {
	var sb strings.Builder

	sb.WriteString(contractDescription)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("The meeting category is %q.\n\n", category))
	sb.WriteString("The following JSON payload violates the schema above. Fix every listed violation and return the corrected JSON object. Do not invent new content; only repair structure, enumerations, and missing required fields using information already present in the payload. Respond with JSON only.\n\n")

	sb.WriteString("VIOLATIONS:\n")
	for _, violation := range violations {
		sb.WriteString("- " + violation + "\n")
	}

	sb.WriteString("\nPAYLOAD:\n")
	sb.WriteString(invalidPayload)

	return sb.String()
}

// FormatViolations joins violations into the single human-readable failure
// message persisted on the meeting
func FormatViolations(violations []string) string {
	return strings.Join(violations, "; ")
}
