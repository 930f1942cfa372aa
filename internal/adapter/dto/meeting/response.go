package meeting

import (
	"time"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID            string              `json:"id"`
	ProjectID     string              `json:"project_id"`
	Title         string              `json:"title"`
	Category      string              `json:"category"`
	MeetingDate   string              `json:"meeting_date"`
	Attendees     []entities.Attendee `json:"attendees"`
	Status        string              `json:"status"`
	FailureReason *string             `json:"failure_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FromEntity converts a meeting entity into its response shape. The
// transcript is deliberately omitted from list/detail payloads; it can be
// large and the review UI works off the change set.
func FromEntity(m *entities.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:            m.ID.String(),
		ProjectID:     m.ProjectID.String(),
		Title:         m.Title,
		Category:      string(m.Category),
		MeetingDate:   m.MeetingDate.Format("2006-01-02"),
		Attendees:     m.Attendees,
		Status:        string(m.Status),
		FailureReason: m.FailureReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromEntities converts a meeting list
func FromEntities(meetings []entities.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, len(meetings))
	for i := range meetings {
		out[i] = FromEntity(&meetings[i])
	}
	return out
}
