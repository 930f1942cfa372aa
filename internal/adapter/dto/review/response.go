package review

import (
	"time"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// ChangeSetResponse represents a pending change set in API responses
type ChangeSetResponse struct {
	ID          string                    `json:"id"`
	MeetingID   string                    `json:"meeting_id"`
	Items       []entities.ProposedChange `json:"items"`
	Recap       string                    `json:"recap"`
	Tone        entities.ToneAssessment   `json:"tone"`
	Fishbone    *entities.FishboneOutline `json:"fishbone,omitempty"`
	Context     entities.ContextStats     `json:"context"`
	LockVersion int                       `json:"lock_version"`
	LockedBy    *string                   `json:"locked_by,omitempty"`
	LockedAt    *time.Time                `json:"locked_at,omitempty"`
	Consumed    bool                      `json:"consumed"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// FromChangeSet converts a change set entity into its response shape
func FromChangeSet(cs *entities.ChangeSet) ChangeSetResponse {
	resp := ChangeSetResponse{
		ID:          cs.ID.String(),
		MeetingID:   cs.MeetingID.String(),
		Items:       cs.Items,
		Recap:       cs.Recap,
		Tone:        cs.Tone,
		Fishbone:    cs.Fishbone,
		Context:     cs.Context,
		LockVersion: cs.LockVersion,
		LockedAt:    cs.LockedAt,
		Consumed:    cs.Consumed,
		CreatedAt:   cs.CreatedAt,
	}
	if cs.LockedBy != nil {
		holder := cs.LockedBy.String()
		resp.LockedBy = &holder
	}
	return resp
}

// RecordResponse represents a canonical record in API responses
type RecordResponse struct {
	ID             string              `json:"id"`
	ProjectID      string              `json:"project_id"`
	Kind           string              `json:"kind"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Status         string              `json:"status"`
	Priority       string              `json:"priority,omitempty"`
	OwnerName      string              `json:"owner_name,omitempty"`
	OwnerEmail     string              `json:"owner_email,omitempty"`
	OwnerUserID    *string             `json:"owner_user_id,omitempty"`
	OwnerContactID *string             `json:"owner_contact_id,omitempty"`
	Evidence       []entities.Evidence `json:"evidence,omitempty"`
	SupersededByID *string             `json:"superseded_by_id,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// FromRecord converts a record entity into its response shape
func FromRecord(r *entities.Record) RecordResponse {
	resp := RecordResponse{
		ID:          r.ID.String(),
		ProjectID:   r.ProjectID.String(),
		Kind:        string(r.Kind),
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		OwnerName:   r.OwnerName,
		OwnerEmail:  r.OwnerEmail,
		Evidence:    r.Evidence,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.OwnerUserID != nil {
		id := r.OwnerUserID.String()
		resp.OwnerUserID = &id
	}
	if r.OwnerContactID != nil {
		id := r.OwnerContactID.String()
		resp.OwnerContactID = &id
	}
	if r.SupersededByID != nil {
		id := r.SupersededByID.String()
		resp.SupersededByID = &id
	}
	return resp
}

// FromRecords converts a record list
func FromRecords(records []entities.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = FromRecord(&records[i])
	}
	return out
}
