package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecordKind distinguishes the three canonical record types
type RecordKind string

const (
	RecordKindActionItem RecordKind = "action_item"
	RecordKindDecision   RecordKind = "decision"
	RecordKindRisk       RecordKind = "risk"
)

// AllRecordKinds lists every canonical record kind
var AllRecordKinds = []RecordKind{RecordKindActionItem, RecordKindDecision, RecordKindRisk}

// IsValid reports whether the kind is one of the known values
func (k RecordKind) IsValid() bool {
	for _, known := range AllRecordKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RecordStatus values. Action items and risks use the open/in_progress/closed
// lifecycle; decisions use the richer proposed/accepted/superseded/archived one.
const (
	RecordStatusOpen       = "open"
	RecordStatusInProgress = "in_progress"
	RecordStatusClosed     = "closed"

	DecisionStatusProposed   = "proposed"
	DecisionStatusAccepted   = "accepted"
	DecisionStatusSuperseded = "superseded"
	DecisionStatusArchived   = "archived"
)

// OpenStatusesFor returns the statuses considered "open" for context selection
func OpenStatusesFor(kind RecordKind) []string {
	if kind == RecordKindDecision {
		return []string{DecisionStatusProposed, DecisionStatusAccepted}
	}
	return []string{RecordStatusOpen, RecordStatusInProgress}
}

// ClosedStatusFor returns the terminal status a close operation moves the
// record to
func ClosedStatusFor(kind RecordKind) string {
	if kind == RecordKindDecision {
		return DecisionStatusArchived
	}
	return RecordStatusClosed
}

// Evidence is a transcript quote substantiating a record
type Evidence struct {
	Quote     string `json:"quote"`
	Speaker   string `json:"speaker,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Record is a canonical action item, decision, or risk
type Record struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	Kind        RecordKind `json:"kind" gorm:"type:varchar(50);not null;index"`
	Title       string     `json:"title" gorm:"type:varchar(500);not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(50);not null;index"`
	Priority    string     `json:"priority,omitempty" gorm:"type:varchar(20)"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	// Owner: at most one canonical identity, plus the free-text fallback the
	// extraction produced.
	OwnerUserID    *uuid.UUID `json:"owner_user_id,omitempty" gorm:"type:uuid;index"`
	OwnerContactID *uuid.UUID `json:"owner_contact_id,omitempty" gorm:"type:uuid;index"`
	OwnerName      string     `json:"owner_name,omitempty" gorm:"type:varchar(255)"`
	OwnerEmail     string     `json:"owner_email,omitempty" gorm:"type:varchar(255)"`

	Evidence []Evidence `json:"evidence,omitempty" gorm:"type:jsonb;serializer:json"`

	// SupersededByID carries the forward reference when one decision replaces
	// another.
	SupersededByID *uuid.UUID `json:"superseded_by_id,omitempty" gorm:"type:uuid"`

	SourceMeetingID *uuid.UUID `json:"source_meeting_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime;index"`
}

// TableName specifies the table name for GORM
func (Record) TableName() string {
	return "records"
}

// NewRecord creates a record in its kind's initial open status
func NewRecord(projectID uuid.UUID, kind RecordKind, title string) *Record {
	status := RecordStatusOpen
	if kind == RecordKindDecision {
		status = DecisionStatusAccepted
	}
	return &Record{
		ID:        uuid.New(),
		ProjectID: projectID,
		Kind:      kind,
		Title:     title,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsClosed reports whether the record already reached its terminal status
func (r *Record) IsClosed() bool {
	switch r.Kind {
	case RecordKindDecision:
		return r.Status == DecisionStatusSuperseded || r.Status == DecisionStatusArchived
	default:
		return r.Status == RecordStatusClosed
	}
}

// EmbeddingText returns the text indexed for semantic similarity
func (r *Record) EmbeddingText() string {
	if r.Description == "" {
		return r.Title
	}
	return r.Title + "\n" + r.Description
}
