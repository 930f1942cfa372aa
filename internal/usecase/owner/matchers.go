package owner

import (
	"strings"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// attendeeInferenceConfidence is the fixed confidence of a resolution that
// went through attendee-list email inference: the identity is firm (exact
// email match) but the name-to-attendee link was fuzzy.
const attendeeInferenceConfidence = 0.8

// matchInput carries everything a matcher may consult. Matchers are pure
// functions over this input.
type matchInput struct {
	hint      entities.OwnerHint
	roster    *entities.Roster
	attendees []entities.Attendee
	index     *fuzzyIndex

	acceptance     float64
	highConfidence float64
	maxCandidates  int
}

// matcher is one step of the resolution cascade. A nil result means "no
// opinion, ask the next matcher".
type matcher func(in matchInput) *entities.ResolvedOwner

// cascade is the ordered chain. The first non-nil result wins, so an exact
// email match can never be outranked by a fuzzy score.
var cascade = []matcher{
	matchMemberEmail,
	matchContactEmail,
	matchAttendeeEmailInference,
	matchConferenceRoom,
	matchFuzzyName,
}

// matchMemberEmail resolves an exact case-insensitive email match against
// registered members
func matchMemberEmail(in matchInput) *entities.ResolvedOwner {
	if in.hint.Email == "" {
		return nil
	}
	email := strings.ToLower(in.hint.Email)
	for i := range in.roster.Members {
		member := &in.roster.Members[i]
		if strings.ToLower(member.Email) == email {
			id := member.ID
			return &entities.ResolvedOwner{
				Name:           member.Name,
				Email:          member.Email,
				ResolvedUserID: &id,
				Status:         entities.OwnerStatusResolved,
				Confidence:     1.0,
			}
		}
	}
	return nil
}

// matchContactEmail resolves an exact case-insensitive email match against
// lightweight contacts
func matchContactEmail(in matchInput) *entities.ResolvedOwner {
	if in.hint.Email == "" {
		return nil
	}
	email := strings.ToLower(in.hint.Email)
	for i := range in.roster.Contacts {
		contact := &in.roster.Contacts[i]
		if contact.Email != "" && strings.ToLower(contact.Email) == email {
			id := contact.ID
			return &entities.ResolvedOwner{
				Name:              contact.Name,
				Email:             contact.Email,
				ResolvedContactID: &id,
				Status:            entities.OwnerStatusResolved,
				Confidence:        1.0,
			}
		}
	}
	return nil
}

// matchAttendeeEmailInference handles a hint with a name but no email: find
// an attendee whose name contains the hint (or vice versa), take that
// attendee's email, and exact-match it against members then contacts. The
// identity is backed by an email but the name link was inferred, so the
// result asks for confirmation.
func matchAttendeeEmailInference(in matchInput) *entities.ResolvedOwner {
	if in.hint.Email != "" || in.hint.Name == "" {
		return nil
	}

	hintName := normalize(in.hint.Name)
	for _, attendee := range in.attendees {
		if attendee.Email == "" {
			continue
		}
		attendeeName := normalize(attendee.Name)
		if attendeeName == "" {
			continue
		}
		if !strings.Contains(attendeeName, hintName) && !strings.Contains(hintName, attendeeName) {
			continue
		}

		email := strings.ToLower(attendee.Email)
		for i := range in.roster.Members {
			member := &in.roster.Members[i]
			if strings.ToLower(member.Email) == email {
				id := member.ID
				return &entities.ResolvedOwner{
					Name:           member.Name,
					Email:          member.Email,
					ResolvedUserID: &id,
					Status:         entities.OwnerStatusNeedsConfirmation,
					Confidence:     attendeeInferenceConfidence,
				}
			}
		}
		for i := range in.roster.Contacts {
			contact := &in.roster.Contacts[i]
			if contact.Email != "" && strings.ToLower(contact.Email) == email {
				id := contact.ID
				return &entities.ResolvedOwner{
					Name:              contact.Name,
					Email:             contact.Email,
					ResolvedContactID: &id,
					Status:            entities.OwnerStatusNeedsConfirmation,
					Confidence:        attendeeInferenceConfidence,
				}
			}
		}
	}
	return nil
}

var roomKeywords = map[string]bool{
	"conference": true,
	"room":       true,
	"boardroom":  true,
}

// matchConferenceRoom classifies equipment and room names so they never get
// fuzzy-matched onto a person
func matchConferenceRoom(in matchInput) *entities.ResolvedOwner {
	for _, token := range strings.Fields(normalize(in.hint.Name)) {
		if roomKeywords[token] {
			return &entities.ResolvedOwner{
				Name:       in.hint.Name,
				Status:     entities.OwnerStatusConferenceRoom,
				Confidence: 0,
			}
		}
	}
	return nil
}

// matchFuzzyName is the last step: edit-distance search over the unified
// member+contact index. Exactly one hit above acceptance resolves (with
// confirmation below the high-confidence cutoff); several hits are handed to
// a human as ranked candidates; none means unknown.
func matchFuzzyName(in matchInput) *entities.ResolvedOwner {
	if in.hint.Name == "" {
		return &entities.ResolvedOwner{
			Name:       in.hint.Name,
			Email:      in.hint.Email,
			Status:     entities.OwnerStatusUnknown,
			Confidence: 0,
		}
	}

	hits := in.index.search(in.hint.Name, in.acceptance)

	switch {
	case len(hits) == 0:
		return &entities.ResolvedOwner{
			Name:       in.hint.Name,
			Email:      in.hint.Email,
			Status:     entities.OwnerStatusUnknown,
			Confidence: 0,
		}

	case len(hits) == 1:
		hit := hits[0]
		status := entities.OwnerStatusNeedsConfirmation
		if hit.score > in.highConfidence {
			status = entities.OwnerStatusResolved
		}
		return &entities.ResolvedOwner{
			Name:              hit.entry.Name,
			Email:             hit.entry.Email,
			ResolvedUserID:    hit.entry.UserID,
			ResolvedContactID: hit.entry.ContactID,
			Status:            status,
			Confidence:        hit.score,
		}

	default:
		if len(hits) > in.maxCandidates {
			hits = hits[:in.maxCandidates]
		}
		candidates := make([]entities.OwnerCandidate, len(hits))
		for i, hit := range hits {
			candidates[i] = entities.OwnerCandidate{
				UserID:    hit.entry.UserID,
				ContactID: hit.entry.ContactID,
				Name:      hit.entry.Name,
				Email:     hit.entry.Email,
				Score:     hit.score,
			}
		}
		return &entities.ResolvedOwner{
			Name:       in.hint.Name,
			Email:      in.hint.Email,
			Status:     entities.OwnerStatusAmbiguous,
			Confidence: hits[0].score,
			Candidates: candidates,
		}
	}
}
