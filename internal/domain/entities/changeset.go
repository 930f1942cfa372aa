package entities

import (
	"time"

	"github.com/google/uuid"
)

// ContextStats records how the grounding context for an extraction was chosen
type ContextStats struct {
	Method      string `json:"method"` // passthrough, similarity, recency
	ActionItems int    `json:"action_items"`
	Decisions   int    `json:"decisions"`
	Risks       int    `json:"risks"`
}

// Context selection methods
const (
	ContextMethodPassthrough = "passthrough"
	ContextMethodSimilarity  = "similarity"
	ContextMethodRecency     = "recency"
)

// ProposedChange is one reviewable entry of a change set: a proposed item
// plus its resolved owner and the reviewer's verdict
type ProposedChange struct {
	ID            uuid.UUID     `json:"id"`
	Kind          RecordKind    `json:"kind"`
	Item          ProposedItem  `json:"item"`
	ResolvedOwner ResolvedOwner `json:"resolved_owner"`
	Accepted      bool          `json:"accepted"`
	DuplicateOf   *uuid.UUID    `json:"duplicate_of,omitempty"`
	Similarity    float64       `json:"similarity,omitempty"`
}

// ChangeSet is the batch of proposed changes generated from one meeting's
// extraction, pending human review. LockVersion is the optimistic concurrency
// token; LockedBy/LockedAt form the cooperative soft lock. The two are
// deliberately separate mechanisms: the lock is a UX signal, the version
// check is the lost-update guarantee.
type ChangeSet struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`

	Items    []ProposedChange `json:"items" gorm:"type:jsonb;serializer:json"`
	Recap    string           `json:"recap" gorm:"type:text"`
	Tone     ToneAssessment   `json:"tone" gorm:"type:jsonb;serializer:json"`
	Fishbone *FishboneOutline `json:"fishbone,omitempty" gorm:"type:jsonb;serializer:json"`
	Context  ContextStats     `json:"context" gorm:"type:jsonb;serializer:json"`

	LockVersion int        `json:"lock_version" gorm:"not null;default:1"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty" gorm:"type:uuid"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`

	Consumed  bool      `json:"consumed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ChangeSet) TableName() string {
	return "change_sets"
}

// NewChangeSet creates a fresh change set at version 1
func NewChangeSet(meetingID uuid.UUID, items []ProposedChange) *ChangeSet {
	return &ChangeSet{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		Items:       items,
		LockVersion: 1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// IsLockedByOther reports whether an unexpired lock held by someone other
// than actor exists at the given instant. An expired lock is treated as
// absent and may be silently reacquired.
func (cs *ChangeSet) IsLockedByOther(actor uuid.UUID, now time.Time, expiry time.Duration) bool {
	if cs.LockedBy == nil || cs.LockedAt == nil {
		return false
	}
	if *cs.LockedBy == actor {
		return false
	}
	return now.Sub(*cs.LockedAt) < expiry
}

// FindItem returns a pointer to the proposed change with the given id, or nil
func (cs *ChangeSet) FindItem(id uuid.UUID) *ProposedChange {
	for i := range cs.Items {
		if cs.Items[i].ID == id {
			return &cs.Items[i]
		}
	}
	return nil
}

// AcceptedItems returns the items the reviewer marked for merge
func (cs *ChangeSet) AcceptedItems() []ProposedChange {
	accepted := make([]ProposedChange, 0, len(cs.Items))
	for _, item := range cs.Items {
		if item.Accepted {
			accepted = append(accepted, item)
		}
	}
	return accepted
}
