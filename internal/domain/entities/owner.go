package entities

import "github.com/google/uuid"

// OwnerResolutionStatus grades how confidently a free-text owner hint was
// mapped to a canonical identity
type OwnerResolutionStatus string

const (
	OwnerStatusResolved          OwnerResolutionStatus = "resolved"
	OwnerStatusNeedsConfirmation OwnerResolutionStatus = "needs_confirmation"
	OwnerStatusAmbiguous         OwnerResolutionStatus = "ambiguous"
	OwnerStatusConferenceRoom    OwnerResolutionStatus = "conference_room"
	OwnerStatusUnknown           OwnerResolutionStatus = "unknown"
)

// OwnerCandidate is one ranked alternative offered for human disambiguation
type OwnerCandidate struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ContactID *uuid.UUID `json:"contact_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Score     float64    `json:"score"`
}

// ResolvedOwner is the outcome of the owner resolution cascade. At most one
// of ResolvedUserID / ResolvedContactID is set.
type ResolvedOwner struct {
	Name              string                `json:"name"`
	Email             string                `json:"email,omitempty"`
	ResolvedUserID    *uuid.UUID            `json:"resolved_user_id,omitempty"`
	ResolvedContactID *uuid.UUID            `json:"resolved_contact_id,omitempty"`
	Status            OwnerResolutionStatus `json:"status"`
	Confidence        float64               `json:"confidence"`
	Candidates        []OwnerCandidate      `json:"candidates,omitempty"`
}

// IsMergeable reports whether the resolution is settled enough for a merge
// without further human input. Ambiguous and unknown owners block only their
// own item, never the whole change set.
func (o ResolvedOwner) IsMergeable() bool {
	switch o.Status {
	case OwnerStatusResolved, OwnerStatusNeedsConfirmation, OwnerStatusConferenceRoom:
		return true
	default:
		return false
	}
}
