package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

func processedMeeting(t *testing.T, f *fixture, result *entities.ExtractionResult) *entities.Meeting {
	t.Helper()
	f.extractor.result = result
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))
	return meeting
}

func TestPublishCreatesRecordsAndPublishesMeeting(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	report, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Merged)
	assert.True(t, report.Published)
	assert.Empty(t, report.Failures)

	updated, _ := f.meetings.FindByID(context.Background(), meeting.ID)
	assert.Equal(t, entities.MeetingStatusPublished, updated.Status)

	require.Len(t, f.records.byID, 1)
	for _, record := range f.records.byID {
		assert.Equal(t, "Ship the login fix", record.Title)
		assert.Equal(t, entities.RecordStatusOpen, record.Status)
		assert.Equal(t, meeting.ID, *record.SourceMeetingID)
		assert.NotNil(t, record.OwnerUserID)
	}
	assert.Equal(t, 1, f.audits.count("create"))

	cs, _ := f.changeSets.FindByMeetingID(context.Background(), meeting.ID)
	assert.True(t, cs.Consumed)
	assert.Empty(t, cs.Items)
}

func TestPublishSkipsRejectedItems(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	actor := uuid.New()
	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	cs.Items[0].Accepted = false
	version, err := f.service.UpdateItems(context.Background(), meeting.ID, actor, cs.Items, 1)
	require.NoError(t, err)

	report, err := f.service.Publish(context.Background(), meeting.ID, actor, version)
	require.NoError(t, err)

	assert.Zero(t, report.Merged)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.Published)
	assert.Empty(t, f.records.byID)
}

func TestPublishBlocksItemWithUnresolvedOwner(t *testing.T) {
	f := newFixture(t)
	result := extractionWithOneActionItem("Ship the login fix", "Alice")
	result.Risks = []entities.ProposedItem{{
		Operation: entities.OperationCreate,
		Title:     "Vendor risk",
		Owner:     entities.OwnerHint{Name: "Mystery"},
		Evidence:  []entities.Evidence{{Quote: "Someone should own this."}},
	}}
	meeting := processedMeeting(t, f, result)

	// Force-accept the unknown-owner item to prove the merge still refuses it.
	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	for i := range cs.Items {
		cs.Items[i].Accepted = true
	}
	actor := uuid.New()
	version, err := f.service.UpdateItems(context.Background(), meeting.ID, actor, cs.Items, 1)
	require.NoError(t, err)

	report, err := f.service.Publish(context.Background(), meeting.ID, actor, version)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Merged)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Vendor risk", report.Failures[0].Title)
	assert.False(t, report.Published)

	// Partial failure keeps the meeting reviewable with the blocked item left.
	updated, _ := f.meetings.FindByID(context.Background(), meeting.ID)
	assert.Equal(t, entities.MeetingStatusReview, updated.Status)

	remaining, _ := f.changeSets.FindByMeetingID(context.Background(), meeting.ID)
	assert.False(t, remaining.Consumed)
	require.Len(t, remaining.Items, 1)
	assert.Equal(t, "Vendor risk", remaining.Items[0].Item.Title)
}

func TestPublishUpdateMutatesTargetRecord(t *testing.T) {
	f := newFixture(t)

	existing := entities.NewRecord(uuid.New(), entities.RecordKindActionItem, "Old title")
	require.NoError(t, f.records.Create(context.Background(), existing))

	result := &entities.ExtractionResult{
		Recap: "Progress on the existing item.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelPositive, Score: 0.4},
		ActionItems: []entities.ProposedItem{{
			Operation:      entities.OperationUpdate,
			TargetRecordID: existing.ID.String(),
			Title:          "Sharper title",
			Owner:          entities.OwnerHint{Name: "Alice"},
			Evidence:       []entities.Evidence{{Quote: "We renamed the work item."}},
		}},
	}
	meeting := processedMeeting(t, f, result)

	report, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)

	updated, _ := f.records.FindByID(context.Background(), existing.ID)
	assert.Equal(t, "Sharper title", updated.Title)
	assert.Len(t, updated.Evidence, 1)
	assert.Equal(t, 1, f.audits.count("update"))
}

func TestPublishCloseIsIdempotent(t *testing.T) {
	f := newFixture(t)

	existing := entities.NewRecord(uuid.New(), entities.RecordKindActionItem, "Finish migration")
	existing.Status = entities.RecordStatusClosed
	require.NoError(t, f.records.Create(context.Background(), existing))

	result := &entities.ExtractionResult{
		Recap: "The migration wrapped up.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelPositive, Score: 0.6},
		ActionItems: []entities.ProposedItem{{
			Operation:      entities.OperationClose,
			TargetRecordID: existing.ID.String(),
			Title:          "Finish migration",
			Owner:          entities.OwnerHint{Name: "Alice"},
			Evidence:       []entities.Evidence{{Quote: "Migration is done."}},
		}},
	}
	meeting := processedMeeting(t, f, result)

	report, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)

	// Closing an already-closed record succeeds without a duplicate audit entry.
	assert.Equal(t, 1, report.Merged)
	assert.True(t, report.Published)
	assert.Zero(t, f.audits.count("close"))
}

func TestPublishCloseAuditsOnActualTransition(t *testing.T) {
	f := newFixture(t)

	existing := entities.NewRecord(uuid.New(), entities.RecordKindRisk, "Vendor delay")
	require.NoError(t, f.records.Create(context.Background(), existing))

	result := &entities.ExtractionResult{
		Recap: "The vendor delivered; risk retired.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelPositive, Score: 0.3},
		Risks: []entities.ProposedItem{{
			Operation:      entities.OperationClose,
			TargetRecordID: existing.ID.String(),
			Title:          "Vendor delay",
			Owner:          entities.OwnerHint{Name: "Alice"},
			Evidence:       []entities.Evidence{{Quote: "Risk is retired."}},
		}},
	}
	meeting := processedMeeting(t, f, result)

	_, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)

	closed, _ := f.records.FindByID(context.Background(), existing.ID)
	assert.Equal(t, entities.RecordStatusClosed, closed.Status)
	assert.Equal(t, 1, f.audits.count("close"))
}

func TestPublishDecisionSupersedesPriorOne(t *testing.T) {
	f := newFixture(t)

	prior := entities.NewRecord(uuid.New(), entities.RecordKindDecision, "Use Postgres 14")
	require.NoError(t, f.records.Create(context.Background(), prior))

	result := &entities.ExtractionResult{
		Recap: "Decided to move to Postgres 16.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelNeutral, Score: 0.1},
		Decisions: []entities.ProposedItem{{
			Operation:          entities.OperationCreate,
			Title:              "Use Postgres 16",
			SupersedesRecordID: prior.ID.String(),
			Owner:              entities.OwnerHint{Name: "Alice"},
			Evidence:           []entities.Evidence{{Quote: "We will upgrade to 16."}},
		}},
	}
	meeting := processedMeeting(t, f, result)

	report, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)
	assert.True(t, report.Published)

	superseded, _ := f.records.FindByID(context.Background(), prior.ID)
	assert.Equal(t, entities.DecisionStatusSuperseded, superseded.Status)
	require.NotNil(t, superseded.SupersededByID)

	replacement, _ := f.records.FindByID(context.Background(), *superseded.SupersededByID)
	require.NotNil(t, replacement)
	assert.Equal(t, "Use Postgres 16", replacement.Title)
	assert.Equal(t, entities.DecisionStatusAccepted, replacement.Status)
	assert.Equal(t, 1, f.audits.count("supersede"))
}

func TestPublishFailsOnMissingUpdateTarget(t *testing.T) {
	f := newFixture(t)

	result := &entities.ExtractionResult{
		Recap: "Referenced an item nobody can find.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelMixed, Score: -0.1},
		ActionItems: []entities.ProposedItem{{
			Operation:      entities.OperationUpdate,
			TargetRecordID: uuid.NewString(),
			Title:          "Ghost item",
			Owner:          entities.OwnerHint{Name: "Alice"},
			Evidence:       []entities.Evidence{{Quote: "Update the ghost."}},
		}},
	}
	meeting := processedMeeting(t, f, result)

	report, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "not found")
	assert.False(t, report.Published)
}

func TestPublishRejectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	actor := uuid.New()
	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateItems(context.Background(), meeting.ID, actor, cs.Items, 1)
	require.NoError(t, err)

	_, err = f.service.Publish(context.Background(), meeting.ID, actor, 1)
	assert.Equal(t, apperrors.ErrorCode_CHANGESET_VERSION_CONFLICT, appCode(t, err))
	// Nothing merged under a stale version.
	assert.Empty(t, f.records.byID)
}

func TestPublishRejectsWhenLockedByOther(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	alice, bob := uuid.New(), uuid.New()
	_, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)

	_, err = f.service.Publish(context.Background(), meeting.ID, bob, 1)
	assert.Equal(t, apperrors.ErrorCode_CHANGESET_LOCKED, appCode(t, err))
}

func TestPublishRejectsConsumedChangeSet(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	actor := uuid.New()
	_, err := f.service.Publish(context.Background(), meeting.ID, actor, 1)
	require.NoError(t, err)

	// The meeting left Review, so a second publish is an invalid state.
	_, err = f.service.Publish(context.Background(), meeting.ID, actor, 2)
	assert.Equal(t, apperrors.ErrorCode_MEETING_INVALID_STATE, appCode(t, err))
}

func TestPublishRejectsUnprocessedMeeting(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)

	_, err := f.service.Publish(context.Background(), meeting.ID, uuid.New(), 1)
	assert.Equal(t, apperrors.ErrorCode_MEETING_INVALID_STATE, appCode(t, err))
}

func TestPublishExpiredLockDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	meeting := processedMeeting(t, f, extractionWithOneActionItem("Ship the login fix", "Alice"))

	alice, bob := uuid.New(), uuid.New()
	_, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)

	f.service.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	report, err := f.service.Publish(context.Background(), meeting.ID, bob, 1)
	require.NoError(t, err)
	assert.True(t, report.Published)
}
