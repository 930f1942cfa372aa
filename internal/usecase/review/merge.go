package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// MergeFailure reports one item that could not be applied
type MergeFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Title  string    `json:"title"`
	Reason string    `json:"reason"`
}

// MergeReport summarizes one publish attempt
type MergeReport struct {
	Merged    int            `json:"merged"`
	Skipped   int            `json:"skipped"` // items the reviewer rejected
	Failures  []MergeFailure `json:"failures,omitempty"`
	Published bool           `json:"published"`
}

// Publish applies the accepted items of a meeting's change set to canonical
// records. Failure is per item: a broken item is reported and kept in the
// change set while its siblings land. The meeting reaches Published only when
// every accepted item applied; otherwise it stays in Review with the
// remaining items still actionable.
func (s *Service) Publish(ctx context.Context, meetingID, actor uuid.UUID, presentedVersion int) (*MergeReport, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting", err)
	}
	if meeting == nil {
		return nil, errors.ErrMeetingNotFound(meetingID.String())
	}
	if meeting.Status != entities.MeetingStatusReview {
		return nil, errors.ErrMeetingInvalidState(meetingID.String(), string(meeting.Status), "publish")
	}

	cs, err := s.GetChangeSet(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if cs.Consumed {
		return nil, errors.ErrChangeSetConsumed(meetingID.String())
	}
	if cs.IsLockedByOther(actor, s.now(), s.cfg.LockExpiry) {
		return nil, errors.ErrChangeSetLocked(lockHolder(cs))
	}
	if cs.LockVersion != presentedVersion {
		return nil, errors.ErrVersionConflict(presentedVersion, cs.LockVersion)
	}

	report := &MergeReport{}
	remaining := make([]entities.ProposedChange, 0, len(cs.Items))

	for _, change := range cs.Items {
		if !change.Accepted {
			report.Skipped++
			remaining = append(remaining, change)
			continue
		}

		// Unsettled owners block their own item only, never the batch.
		if !change.ResolvedOwner.IsMergeable() {
			report.Failures = append(report.Failures, MergeFailure{
				ItemID: change.ID,
				Title:  change.Item.Title,
				Reason: fmt.Sprintf("owner %q is %s and needs human input", change.ResolvedOwner.Name, change.ResolvedOwner.Status),
			})
			remaining = append(remaining, change)
			continue
		}

		if err := s.applyChange(ctx, meeting, actor, change); err != nil {
			s.logger.Warn("❌ Merge item failed",
				zap.String("meeting_id", meetingID.String()),
				zap.String("item_id", change.ID.String()),
				zap.Error(err))
			report.Failures = append(report.Failures, MergeFailure{
				ItemID: change.ID,
				Title:  change.Item.Title,
				Reason: err.Error(),
			})
			remaining = append(remaining, change)
			continue
		}
		report.Merged++
	}

	// Persist what is left under the same optimistic guard; merged items
	// leave the set so a retried publish cannot apply them twice.
	if _, ok, err := s.changeSets.UpdateItems(ctx, cs.ID, remaining, presentedVersion); err != nil {
		return report, errors.ErrDBQueryFailed("update change set after merge", err)
	} else if !ok {
		return report, errors.ErrVersionConflict(presentedVersion, cs.LockVersion)
	}

	if len(report.Failures) == 0 {
		if err := s.changeSets.MarkConsumed(ctx, cs.ID); err != nil {
			return report, errors.ErrDBQueryFailed("consume change set", err)
		}
		if _, err := s.meetings.TransitionStatus(ctx, meetingID,
			[]entities.MeetingStatus{entities.MeetingStatusReview}, entities.MeetingStatusPublished); err != nil {
			return report, errors.ErrDBQueryFailed("transition meeting to published", err)
		}
		report.Published = true
	}

	s.logger.Info("📦 Merge finished",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("merged", report.Merged),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failures)),
		zap.Bool("published", report.Published))

	return report, nil
}

// applyChange dispatches one accepted item on its operation
func (s *Service) applyChange(ctx context.Context, meeting *entities.Meeting, actor uuid.UUID, change entities.ProposedChange) error {
	switch change.Item.Operation {
	case entities.OperationCreate:
		return s.applyCreate(ctx, meeting, actor, change)
	case entities.OperationUpdate:
		return s.applyUpdate(ctx, meeting, actor, change)
	case entities.OperationClose:
		return s.applyClose(ctx, actor, change)
	default:
		return fmt.Errorf("unknown operation %q", change.Item.Operation)
	}
}

func (s *Service) applyCreate(ctx context.Context, meeting *entities.Meeting, actor uuid.UUID, change entities.ProposedChange) error {
	record := entities.NewRecord(meeting.ProjectID, change.Kind, change.Item.Title)
	record.Description = change.Item.Description
	record.Priority = change.Item.Priority
	record.Evidence = change.Item.Evidence
	record.SourceMeetingID = &meeting.ID
	applyOwner(record, change.ResolvedOwner)

	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	s.audit(ctx, actor, "create", record.ID, nil, record)

	// A new decision may explicitly retire the one it replaces.
	if change.Kind == entities.RecordKindDecision && change.Item.SupersedesRecordID != "" {
		supersededID, err := uuid.Parse(change.Item.SupersedesRecordID)
		if err != nil {
			return fmt.Errorf("supersedes_record_id is malformed: %w", err)
		}
		before, err := s.records.FindByID(ctx, supersededID)
		if err != nil || before == nil {
			return fmt.Errorf("superseded decision %s not found", supersededID)
		}
		if err := s.records.Supersede(ctx, supersededID, record.ID); err != nil {
			return fmt.Errorf("supersede decision: %w", err)
		}
		s.audit(ctx, actor, "supersede", supersededID, before, nil)
	}

	s.indexBestEffort(ctx, record)
	return nil
}

func (s *Service) applyUpdate(ctx context.Context, meeting *entities.Meeting, actor uuid.UUID, change entities.ProposedChange) error {
	targetID, err := uuid.Parse(change.Item.TargetRecordID)
	if err != nil {
		return fmt.Errorf("target_record_id is malformed: %w", err)
	}

	record, err := s.records.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("find target record: %w", err)
	}
	if record == nil {
		return fmt.Errorf("target record %s not found", targetID)
	}

	before := *record
	if change.Item.Title != "" {
		record.Title = change.Item.Title
	}
	if change.Item.Description != "" {
		record.Description = change.Item.Description
	}
	if change.Item.Priority != "" {
		record.Priority = change.Item.Priority
	}
	record.Evidence = append(record.Evidence, change.Item.Evidence...)
	record.SourceMeetingID = &meeting.ID
	applyOwner(record, change.ResolvedOwner)

	if err := s.records.Update(ctx, record); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	s.audit(ctx, actor, "update", record.ID, &before, record)
	s.indexBestEffort(ctx, record)
	return nil
}

// applyClose is idempotent: closing an already-closed record succeeds without
// a second audit entry.
func (s *Service) applyClose(ctx context.Context, actor uuid.UUID, change entities.ProposedChange) error {
	targetID, err := uuid.Parse(change.Item.TargetRecordID)
	if err != nil {
		return fmt.Errorf("target_record_id is malformed: %w", err)
	}

	before, err := s.records.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("find target record: %w", err)
	}
	if before == nil {
		return fmt.Errorf("target record %s not found", targetID)
	}

	changed, err := s.records.Close(ctx, targetID)
	if err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if changed {
		s.audit(ctx, actor, "close", targetID, before, nil)
		if err := s.index.RemoveRecord(ctx, before.ProjectID, targetID); err != nil {
			s.logger.Debug("⚠️ Failed to drop closed record from index", zap.Error(err))
		}
	}
	return nil
}

// applyOwner copies a settled resolution onto the record. A conference_room
// resolution clears the identity but keeps the name for display.
func applyOwner(record *entities.Record, owner entities.ResolvedOwner) {
	record.OwnerUserID = owner.ResolvedUserID
	record.OwnerContactID = owner.ResolvedContactID
	record.OwnerName = owner.Name
	record.OwnerEmail = owner.Email
}

func (s *Service) audit(ctx context.Context, actor uuid.UUID, action string, entityID uuid.UUID, before, after *entities.Record) {
	entry := &entities.AuditEntry{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		EntityType: "record",
		EntityID:   entityID,
	}
	if before != nil {
		entry.Before = toJSON(before)
	}
	if after != nil {
		entry.After = toJSON(after)
	}

	if err := s.audits.RecordChange(ctx, entry); err != nil {
		s.logger.Warn("⚠️ Failed to record audit entry",
			zap.String("action", action),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

func (s *Service) indexBestEffort(ctx context.Context, record *entities.Record) {
	if err := s.index.IndexRecord(ctx, record); err != nil {
		s.logger.Debug("⚠️ Failed to index record",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
	}
}

func toJSON(v interface{}) datatypes.JSON {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}
