package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents where a meeting sits in the processing lifecycle
type MeetingStatus string

const (
	MeetingStatusDraft      MeetingStatus = "draft"      // Submitted, not yet processed
	MeetingStatusProcessing MeetingStatus = "processing" // Pipeline run in flight
	MeetingStatusReview     MeetingStatus = "review"     // Change set awaiting human review
	MeetingStatusPublished  MeetingStatus = "published"  // Accepted items merged into canonical records
	MeetingStatusFailed     MeetingStatus = "failed"     // Extraction failed terminally; re-processable
	MeetingStatusDeleted    MeetingStatus = "deleted"    // Soft-deleted by an administrator
)

// MeetingCategory is the declared kind of meeting. The category drives the
// extraction contract: incident reviews and postmortems must carry a
// root-cause outline, every other category must not.
type MeetingCategory string

const (
	MeetingCategoryStandup        MeetingCategory = "standup"
	MeetingCategoryPlanning       MeetingCategory = "planning"
	MeetingCategoryReview         MeetingCategory = "review"
	MeetingCategoryRetrospective  MeetingCategory = "retrospective"
	MeetingCategoryIncidentReview MeetingCategory = "incident_review"
	MeetingCategoryPostmortem     MeetingCategory = "postmortem"
	MeetingCategoryClientCall     MeetingCategory = "client_call"
	MeetingCategoryGeneral        MeetingCategory = "general"
)

// AllMeetingCategories lists every valid category, for contract validation
var AllMeetingCategories = []MeetingCategory{
	MeetingCategoryStandup,
	MeetingCategoryPlanning,
	MeetingCategoryReview,
	MeetingCategoryRetrospective,
	MeetingCategoryIncidentReview,
	MeetingCategoryPostmortem,
	MeetingCategoryClientCall,
	MeetingCategoryGeneral,
}

// IsValid reports whether the category is one of the known values
func (c MeetingCategory) IsValid() bool {
	for _, known := range AllMeetingCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RequiresFishbone reports whether this category's extraction must include a
// root-cause outline
func (c MeetingCategory) RequiresFishbone() bool {
	return c == MeetingCategoryIncidentReview || c == MeetingCategoryPostmortem
}

// Attendee is one person on the meeting's attendee list
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Meeting is the orchestrating entity of one transcript-processing run
type Meeting struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID     uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;index"`
	Title         string          `json:"title" gorm:"type:varchar(500);not null"`
	Category      MeetingCategory `json:"category" gorm:"type:varchar(50);not null"`
	MeetingDate   time.Time       `json:"meeting_date" gorm:"type:date;not null"`
	Attendees     []Attendee      `json:"attendees" gorm:"type:jsonb;serializer:json"`
	Transcript    string          `json:"transcript" gorm:"type:text;not null"`
	Status        MeetingStatus   `json:"status" gorm:"type:varchar(50);not null;index;default:'draft'"`
	FailureReason *string         `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a meeting in draft state
func NewMeeting(projectID uuid.UUID, title string, category MeetingCategory, date time.Time, attendees []Attendee, transcript string) *Meeting {
	return &Meeting{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Category:    category,
		MeetingDate: date,
		Attendees:   attendees,
		Transcript:  transcript,
		Status:      MeetingStatusDraft,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// ProcessableStatuses are the statuses from which a processing run may start.
// A deleted meeting never re-enters processing; a run already in flight is
// not superseded mid-air.
var ProcessableStatuses = []MeetingStatus{
	MeetingStatusDraft,
	MeetingStatusReview,
	MeetingStatusFailed,
}

// CanProcess reports whether a processing run may start from the current status
func (m *Meeting) CanProcess() bool {
	for _, s := range ProcessableStatuses {
		if m.Status == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the meeting reached a state the pipeline never
// leaves on its own
func (m *Meeting) IsTerminal() bool {
	return m.Status == MeetingStatusPublished || m.Status == MeetingStatusDeleted
}
