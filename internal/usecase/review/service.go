package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/internal/usecase/contextsel"
	"github.com/meetwise-team/meetwise/pkg/config"
)

// ContextSelector picks the grounding context for an extraction
type ContextSelector interface {
	Select(ctx context.Context, projectID uuid.UUID, transcript string) (*contextsel.Selection, error)
}

// Extractor produces a contract-valid extraction result or a typed failure
type Extractor interface {
	Extract(ctx context.Context, meeting *entities.Meeting, contextRecords []entities.Record) (*entities.ExtractionResult, error)
}

// OwnerResolver maps owner hints onto canonical identities
type OwnerResolver interface {
	ResolveAll(ctx context.Context, projectID uuid.UUID, hints []entities.OwnerHint, attendees []entities.Attendee) ([]entities.ResolvedOwner, error)
}

// Service runs the processing pipeline and governs the review lifecycle: the
// meeting state machine, the exclusive edit lock, and optimistic item writes.
type Service struct {
	meetings   repositories.MeetingRepository
	changeSets repositories.ChangeSetRepository
	records    repositories.RecordRepository
	audits     repositories.AuditRepository
	index      repositories.SimilarityIndex

	selector  ContextSelector
	extractor Extractor
	resolver  OwnerResolver
	assembler *Assembler

	cfg    *config.PipelineConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the review service
func NewService(
	meetings repositories.MeetingRepository,
	changeSets repositories.ChangeSetRepository,
	records repositories.RecordRepository,
	audits repositories.AuditRepository,
	index repositories.SimilarityIndex,
	selector ContextSelector,
	extractor Extractor,
	resolver OwnerResolver,
	assembler *Assembler,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:   meetings,
		changeSets: changeSets,
		records:    records,
		audits:     audits,
		index:      index,
		selector:   selector,
		extractor:  extractor,
		resolver:   resolver,
		assembler:  assembler,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs the full pipeline for a meeting: context selection,
// extraction, owner resolution, and change set assembly. The meeting moves
// Draft/Review/Failed -> Processing -> Review, or to Failed with a
// human-readable reason on terminal extraction failure. A deleted meeting
// never re-enters processing; a run already in flight is not interrupted.
func (s *Service) Process(ctx context.Context, meetingID uuid.UUID) error {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return errors.ErrDBQueryFailed("find meeting", err)
	}
	if meeting == nil {
		return errors.ErrMeetingNotFound(meetingID.String())
	}
	if meeting.Status == entities.MeetingStatusDeleted {
		return errors.ErrMeetingDeleted(meetingID.String())
	}

	// Status-guarded transition: of several racing processing requests
	// exactly one wins; the rest see the meeting already in Processing.
	claimed, err := s.meetings.TransitionStatus(ctx, meetingID, entities.ProcessableStatuses, entities.MeetingStatusProcessing)
	if err != nil {
		return errors.ErrDBQueryFailed("claim meeting", err)
	}
	if !claimed {
		return errors.ErrMeetingInvalidState(meetingID.String(), string(meeting.Status), "process")
	}

	s.logger.Info("🤖 Processing meeting",
		zap.String("meeting_id", meetingID.String()),
		zap.String("category", string(meeting.Category)))

	if err := s.runPipeline(ctx, meeting); err != nil {
		s.failMeeting(ctx, meetingID, err)
		return err
	}

	if _, err := s.meetings.TransitionStatus(ctx, meetingID,
		[]entities.MeetingStatus{entities.MeetingStatusProcessing}, entities.MeetingStatusReview); err != nil {
		return errors.ErrDBQueryFailed("transition meeting to review", err)
	}

	s.logger.Info("✅ Meeting ready for review", zap.String("meeting_id", meetingID.String()))
	return nil
}

func (s *Service) runPipeline(ctx context.Context, meeting *entities.Meeting) error {
	selection, err := s.selector.Select(ctx, meeting.ProjectID, meeting.Transcript)
	if err != nil {
		return errors.ErrDBQueryFailed("select context", err)
	}

	result, err := s.extractor.Extract(ctx, meeting, selection.Records)
	if err != nil {
		return err
	}

	owners, err := s.resolveOwners(ctx, meeting, result)
	if err != nil {
		return errors.ErrDBQueryFailed("resolve owners", err)
	}

	cs := s.assembler.Assemble(ctx, meeting, result, owners, selection.Stats)
	if err := s.changeSets.Replace(ctx, cs); err != nil {
		return errors.ErrDBQueryFailed("store change set", err)
	}
	return nil
}

// resolveOwners flattens the per-kind owner hints into one resolver pass and
// splits the results back out, keeping item order
func (s *Service) resolveOwners(ctx context.Context, meeting *entities.Meeting, result *entities.ExtractionResult) (map[entities.RecordKind][]entities.ResolvedOwner, error) {
	byKind := result.ItemsByKind()

	var hints []entities.OwnerHint
	for _, kind := range assembleKinds {
		for _, item := range byKind[kind] {
			hints = append(hints, item.Owner)
		}
	}

	resolved, err := s.resolver.ResolveAll(ctx, meeting.ProjectID, hints, meeting.Attendees)
	if err != nil {
		return nil, err
	}

	owners := make(map[entities.RecordKind][]entities.ResolvedOwner, len(assembleKinds))
	offset := 0
	for _, kind := range assembleKinds {
		n := len(byKind[kind])
		owners[kind] = resolved[offset : offset+n]
		offset += n
	}
	return owners, nil
}

// failMeeting persists the terminal failure reason. The meeting stays
// re-processable from Failed.
func (s *Service) failMeeting(ctx context.Context, meetingID uuid.UUID, cause error) {
	reason := "processing failed: " + cause.Error()
	if appErr, ok := cause.(errors.AppError); ok {
		reason = appErr.Message
	}

	if err := s.meetings.SetFailure(ctx, meetingID, reason); err != nil {
		s.logger.Error("❌ Failed to persist meeting failure",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err))
	}

	s.logger.Warn("❌ Meeting processing failed",
		zap.String("meeting_id", meetingID.String()),
		zap.String("reason", reason))
}

// GetChangeSet returns a meeting's pending change set
func (s *Service) GetChangeSet(ctx context.Context, meetingID uuid.UUID) (*entities.ChangeSet, error) {
	cs, err := s.changeSets.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find change set", err)
	}
	if cs == nil {
		return nil, errors.ErrChangeSetNotFound(meetingID.String())
	}
	return cs, nil
}

// AcquireLock takes the exclusive edit lock for actor. Re-acquiring an own or
// expired lock silently succeeds; a fresh lock held by someone else is a
// conflict.
func (s *Service) AcquireLock(ctx context.Context, meetingID, actor uuid.UUID) (*entities.ChangeSet, error) {
	cs, err := s.GetChangeSet(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if cs.Consumed {
		return nil, errors.ErrChangeSetConsumed(meetingID.String())
	}

	acquired, err := s.changeSets.AcquireLock(ctx, cs.ID, actor, s.now(), s.cfg.LockExpiry)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("acquire lock", err)
	}
	if !acquired {
		return nil, errors.ErrChangeSetLocked(lockHolder(cs))
	}

	return s.GetChangeSet(ctx, meetingID)
}

// ReleaseLock gives the lock up early. Releasing a lock you do not hold is a
// no-op.
func (s *Service) ReleaseLock(ctx context.Context, meetingID, actor uuid.UUID) error {
	cs, err := s.GetChangeSet(ctx, meetingID)
	if err != nil {
		return err
	}
	if err := s.changeSets.ReleaseLock(ctx, cs.ID, actor); err != nil {
		return errors.ErrDBQueryFailed("release lock", err)
	}
	return nil
}

// UpdateItems writes the reviewer's edited item list. The soft lock keeps a
// second reviewer out; the version check catches lost updates even inside
// one reviewer's lock window (two tabs). Returns the new version.
func (s *Service) UpdateItems(ctx context.Context, meetingID, actor uuid.UUID, items []entities.ProposedChange, presentedVersion int) (int, error) {
	cs, err := s.GetChangeSet(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if cs.Consumed {
		return 0, errors.ErrChangeSetConsumed(meetingID.String())
	}
	if cs.IsLockedByOther(actor, s.now(), s.cfg.LockExpiry) {
		return 0, errors.ErrChangeSetLocked(lockHolder(cs))
	}

	// Reviewers edit existing proposals; they never inject new ones.
	for _, item := range items {
		if cs.FindItem(item.ID) == nil {
			return 0, errors.ErrInvalidArgument("unknown change set item: " + item.ID.String())
		}
	}

	newVersion, ok, err := s.changeSets.UpdateItems(ctx, cs.ID, items, presentedVersion)
	if err != nil {
		return 0, errors.ErrDBQueryFailed("update change set items", err)
	}
	if !ok {
		current, err := s.changeSets.FindByMeetingID(ctx, meetingID)
		if err != nil || current == nil {
			return 0, errors.ErrVersionConflict(presentedVersion, 0)
		}
		return 0, errors.ErrVersionConflict(presentedVersion, current.LockVersion)
	}
	return newVersion, nil
}

func lockHolder(cs *entities.ChangeSet) string {
	if cs.LockedBy == nil {
		return ""
	}
	return cs.LockedBy.String()
}
