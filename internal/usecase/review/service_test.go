package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/internal/usecase/contextsel"
	"github.com/meetwise-team/meetwise/pkg/config"
)

// --- in-memory fakes ---

type memMeetings struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*entities.Meeting
	failures map[uuid.UUID]string
}

func newMemMeetings() *memMeetings {
	return &memMeetings{byID: make(map[uuid.UUID]*entities.Meeting), failures: make(map[uuid.UUID]string)}
}

func (m *memMeetings) Create(ctx context.Context, meeting *entities.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *meeting
	m.byID[meeting.ID] = &copied
	return nil
}

func (m *memMeetings) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *meeting
	return &copied, nil
}

func (m *memMeetings) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]entities.Meeting, error) {
	return nil, nil
}

func (m *memMeetings) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if meeting.Status == status {
			meeting.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memMeetings) SetFailure(ctx context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meeting, ok := m.byID[id]; ok {
		meeting.Status = entities.MeetingStatusFailed
		meeting.FailureReason = &reason
		m.failures[id] = reason
	}
	return nil
}

type memChangeSets struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entities.ChangeSet
}

func newMemChangeSets() *memChangeSets {
	return &memChangeSets{byID: make(map[uuid.UUID]*entities.ChangeSet)}
}

func (m *memChangeSets) Replace(ctx context.Context, cs *entities.ChangeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.byID {
		if existing.MeetingID == cs.MeetingID {
			delete(m.byID, id)
		}
	}
	copied := *cs
	m.byID[cs.ID] = &copied
	return nil
}

func (m *memChangeSets) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.ChangeSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cs := range m.byID {
		if cs.MeetingID == meetingID {
			copied := *cs
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memChangeSets) UpdateItems(ctx context.Context, id uuid.UUID, items []entities.ProposedChange, presentedVersion int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.byID[id]
	if !ok || cs.Consumed || cs.LockVersion != presentedVersion {
		return 0, false, nil
	}
	cs.Items = items
	cs.LockVersion++
	return cs.LockVersion, true, nil
}

func (m *memChangeSets) AcquireLock(ctx context.Context, id uuid.UUID, actor uuid.UUID, now time.Time, expiry time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	if cs.LockedBy == nil || *cs.LockedBy == actor || now.Sub(*cs.LockedAt) >= expiry {
		cs.LockedBy = &actor
		cs.LockedAt = &now
		return true, nil
	}
	return false, nil
}

func (m *memChangeSets) ReleaseLock(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.byID[id]; ok && cs.LockedBy != nil && *cs.LockedBy == actor {
		cs.LockedBy = nil
		cs.LockedAt = nil
	}
	return nil
}

func (m *memChangeSets) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.byID[id]; ok {
		cs.Consumed = true
		cs.LockedBy = nil
		cs.LockedAt = nil
	}
	return nil
}

type memRecords struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entities.Record
}

func newMemRecords() *memRecords {
	return &memRecords{byID: make(map[uuid.UUID]*entities.Record)}
}

func (m *memRecords) Create(ctx context.Context, record *entities.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.byID[record.ID] = &copied
	return nil
}

func (m *memRecords) FindByID(ctx context.Context, id uuid.UUID) (*entities.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *memRecords) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Record, error) {
	var out []entities.Record
	for _, id := range ids {
		if record, _ := m.FindByID(ctx, id); record != nil {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memRecords) ListOpen(ctx context.Context, projectID uuid.UUID, kind entities.RecordKind, limit int) ([]entities.Record, error) {
	return nil, nil
}

func (m *memRecords) List(ctx context.Context, projectID uuid.UUID, kind *entities.RecordKind, limit, offset int) ([]entities.Record, error) {
	return nil, nil
}

func (m *memRecords) Update(ctx context.Context, record *entities.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.byID[record.ID] = &copied
	return nil
}

func (m *memRecords) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.byID[id]
	if !ok {
		return false, errors.New("record not found")
	}
	if record.IsClosed() {
		return false, nil
	}
	record.Status = entities.ClosedStatusFor(record.Kind)
	return true, nil
}

func (m *memRecords) Supersede(ctx context.Context, id, replacementID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.byID[id]; ok && record.Kind == entities.RecordKindDecision {
		record.Status = entities.DecisionStatusSuperseded
		record.SupersededByID = &replacementID
	}
	return nil
}

func (m *memRecords) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memAudits struct {
	mu      sync.Mutex
	entries []entities.AuditEntry
}

func (m *memAudits) RecordChange(ctx context.Context, entry *entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudits) count(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, entry := range m.entries {
		if entry.Action == action {
			n++
		}
	}
	return n
}

type noopIndex struct{}

func (noopIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("no embedder in test")
}
func (noopIndex) Search(ctx context.Context, projectID uuid.UUID, vector []float32, threshold float64, limit int) ([]repositories.SimilarityHit, error) {
	return nil, nil
}
func (noopIndex) IndexRecord(ctx context.Context, record *entities.Record) error { return nil }
func (noopIndex) RemoveRecord(ctx context.Context, projectID, recordID uuid.UUID) error {
	return nil
}

type stubSelector struct{}

func (stubSelector) Select(ctx context.Context, projectID uuid.UUID, transcript string) (*contextsel.Selection, error) {
	return &contextsel.Selection{Stats: entities.ContextStats{Method: entities.ContextMethodPassthrough}}, nil
}

type stubExtractor struct {
	result *entities.ExtractionResult
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, meeting *entities.Meeting, contextRecords []entities.Record) (*entities.ExtractionResult, error) {
	return s.result, s.err
}

// stubResolver resolves every hint as a confirmed member unless the name is
// "Mystery", which stays unknown
type stubResolver struct{}

func (stubResolver) ResolveAll(ctx context.Context, projectID uuid.UUID, hints []entities.OwnerHint, attendees []entities.Attendee) ([]entities.ResolvedOwner, error) {
	resolved := make([]entities.ResolvedOwner, len(hints))
	for i, hint := range hints {
		if hint.Name == "Mystery" {
			resolved[i] = entities.ResolvedOwner{Name: hint.Name, Status: entities.OwnerStatusUnknown}
			continue
		}
		id := uuid.New()
		resolved[i] = entities.ResolvedOwner{
			Name:           hint.Name,
			Email:          hint.Email,
			ResolvedUserID: &id,
			Status:         entities.OwnerStatusResolved,
			Confidence:     1.0,
		}
	}
	return resolved, nil
}

// --- fixture ---

type fixture struct {
	service    *Service
	meetings   *memMeetings
	changeSets *memChangeSets
	records    *memRecords
	audits     *memAudits
	extractor  *stubExtractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	meetings := newMemMeetings()
	changeSets := newMemChangeSets()
	records := newMemRecords()
	audits := &memAudits{}
	extractor := &stubExtractor{result: extractionWithOneActionItem("Ship the login fix", "Alice")}

	cfg := &config.PipelineConfig{LockExpiry: 30 * time.Minute}
	service := NewService(
		meetings, changeSets, records, audits, noopIndex{},
		stubSelector{}, extractor, stubResolver{},
		NewAssembler(noopIndex{}, zap.NewNop()),
		cfg, zap.NewNop())

	return &fixture{
		service:    service,
		meetings:   meetings,
		changeSets: changeSets,
		records:    records,
		audits:     audits,
		extractor:  extractor,
	}
}

func (f *fixture) addMeeting(t *testing.T, status entities.MeetingStatus) *entities.Meeting {
	t.Helper()
	meeting := entities.NewMeeting(uuid.New(), "Weekly sync", entities.MeetingCategoryGeneral,
		time.Now(), []entities.Attendee{{Name: "Alice Smith", Email: "alice@co.com"}},
		"Alice will ship the login fix.")
	meeting.Status = status
	require.NoError(t, f.meetings.Create(context.Background(), meeting))
	return meeting
}

func extractionWithOneActionItem(title, ownerName string) *entities.ExtractionResult {
	return &entities.ExtractionResult{
		Recap: "One action item came out of the sync.",
		Tone:  entities.ToneAssessment{Label: entities.ToneLabelNeutral, Score: 0},
		ActionItems: []entities.ProposedItem{{
			Operation: entities.OperationCreate,
			Title:     title,
			Owner:     entities.OwnerHint{Name: ownerName},
			Evidence:  []entities.Evidence{{Quote: title + " was agreed."}},
		}},
	}
}

func appCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

// --- state machine ---

func TestProcessMovesMeetingToReview(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)

	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	updated, _ := f.meetings.FindByID(context.Background(), meeting.ID)
	assert.Equal(t, entities.MeetingStatusReview, updated.Status)

	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.LockVersion)
	require.Len(t, cs.Items, 1)
	assert.True(t, cs.Items[0].Accepted)
	assert.Equal(t, entities.RecordKindActionItem, cs.Items[0].Kind)
}

func TestProcessRejectsDeletedMeeting(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDeleted)

	err := f.service.Process(context.Background(), meeting.ID)
	assert.Equal(t, apperrors.ErrorCode_MEETING_DELETED, appCode(t, err))
}

func TestProcessRejectsMeetingAlreadyProcessing(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusProcessing)

	err := f.service.Process(context.Background(), meeting.ID)
	assert.Equal(t, apperrors.ErrorCode_MEETING_INVALID_STATE, appCode(t, err))
}

func TestProcessUnknownMeeting(t *testing.T) {
	f := newFixture(t)
	err := f.service.Process(context.Background(), uuid.New())
	assert.Equal(t, apperrors.ErrorCode_MEETING_NOT_FOUND, appCode(t, err))
}

func TestProcessExtractionFailureMarksMeetingFailed(t *testing.T) {
	f := newFixture(t)
	f.extractor.result = nil
	f.extractor.err = apperrors.ErrContractViolation([]string{"recap is required"})
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)

	err := f.service.Process(context.Background(), meeting.ID)
	require.Error(t, err)

	updated, _ := f.meetings.FindByID(context.Background(), meeting.ID)
	assert.Equal(t, entities.MeetingStatusFailed, updated.Status)
	require.NotNil(t, updated.FailureReason)
	assert.NotEmpty(t, *updated.FailureReason)

	// A failed meeting stays re-processable.
	f.extractor.err = nil
	f.extractor.result = extractionWithOneActionItem("Retry worked", "Alice")
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))
}

func TestReprocessingReplacesChangeSet(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	first, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)

	f.extractor.result = extractionWithOneActionItem("Second pass item", "Alice")
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	second, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, second.LockVersion)
	assert.Equal(t, "Second pass item", second.Items[0].Item.Title)
}

// --- locking ---

func TestLockMutualExclusion(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	alice, bob := uuid.New(), uuid.New()

	_, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)

	_, err = f.service.AcquireLock(context.Background(), meeting.ID, bob)
	assert.Equal(t, apperrors.ErrorCode_CHANGESET_LOCKED, appCode(t, err))

	// The holder may refresh their own lock.
	_, err = f.service.AcquireLock(context.Background(), meeting.ID, alice)
	assert.NoError(t, err)
}

func TestLockedChangeSetRejectsOtherWriters(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	alice, bob := uuid.New(), uuid.New()
	cs, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)

	_, err = f.service.UpdateItems(context.Background(), meeting.ID, bob, cs.Items, cs.LockVersion)
	assert.Equal(t, apperrors.ErrorCode_CHANGESET_LOCKED, appCode(t, err))
}

func TestExpiredLockIsSilentlyReacquired(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	alice, bob := uuid.New(), uuid.New()
	_, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)

	// Jump past the expiry window; Alice's abandoned lock no longer counts.
	f.service.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	cs, err := f.service.AcquireLock(context.Background(), meeting.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, *cs.LockedBy)
}

func TestReleaseLockFreesIt(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	alice, bob := uuid.New(), uuid.New()
	_, err := f.service.AcquireLock(context.Background(), meeting.ID, alice)
	require.NoError(t, err)
	require.NoError(t, f.service.ReleaseLock(context.Background(), meeting.ID, alice))

	_, err = f.service.AcquireLock(context.Background(), meeting.ID, bob)
	assert.NoError(t, err)
}

// --- optimistic versioning ---

func TestUpdateItemsIncrementsVersionByOne(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	actor := uuid.New()
	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cs.LockVersion)

	items := cs.Items
	items[0].Accepted = false

	newVersion, err := f.service.UpdateItems(context.Background(), meeting.ID, actor, items, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, newVersion)

	newVersion, err = f.service.UpdateItems(context.Background(), meeting.ID, actor, items, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, newVersion)
}

func TestUpdateItemsRejectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	actor := uuid.New()
	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)

	_, err = f.service.UpdateItems(context.Background(), meeting.ID, actor, cs.Items, 1)
	require.NoError(t, err)

	// Second tab presents the version it read before the first write.
	_, err = f.service.UpdateItems(context.Background(), meeting.ID, actor, cs.Items, 1)
	assert.Equal(t, apperrors.ErrorCode_CHANGESET_VERSION_CONFLICT, appCode(t, err))
}

func TestUpdateItemsRejectsInjectedItem(t *testing.T) {
	f := newFixture(t)
	meeting := f.addMeeting(t, entities.MeetingStatusDraft)
	require.NoError(t, f.service.Process(context.Background(), meeting.ID))

	cs, err := f.service.GetChangeSet(context.Background(), meeting.ID)
	require.NoError(t, err)

	forged := cs.Items[0]
	forged.ID = uuid.New()

	_, err = f.service.UpdateItems(context.Background(), meeting.ID, uuid.New(),
		append(cs.Items, forged), cs.LockVersion)
	assert.Equal(t, apperrors.ErrorCode_INVALID_ARGUMENT, appCode(t, err))
}
