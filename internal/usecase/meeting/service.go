package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
)

// deletableStatuses lists the states an administrator may soft-delete from.
// Published meetings are immutable history.
var deletableStatuses = []entities.MeetingStatus{
	entities.MeetingStatusDraft,
	entities.MeetingStatusProcessing,
	entities.MeetingStatusReview,
	entities.MeetingStatusFailed,
}

// Service covers the meeting CRUD surface around the processing pipeline
type Service struct {
	meetings repositories.MeetingRepository
	logger   *zap.Logger
}

// NewService creates a meeting service
func NewService(meetings repositories.MeetingRepository, logger *zap.Logger) *Service {
	return &Service{meetings: meetings, logger: logger}
}

// CreateInput is the validated submission of a transcript
type CreateInput struct {
	ProjectID   uuid.UUID
	Title       string
	Category    entities.MeetingCategory
	MeetingDate time.Time
	Attendees   []entities.Attendee
	Transcript  string
	CreatedBy   *uuid.UUID
}

// Create submits a transcript as a draft meeting
func (s *Service) Create(ctx context.Context, in CreateInput) (*entities.Meeting, error) {
	if !in.Category.IsValid() {
		return nil, errors.ErrInvalidArgument("unknown meeting category: " + string(in.Category))
	}
	if in.Transcript == "" {
		return nil, errors.ErrInvalidArgument("transcript must not be empty")
	}

	meeting := entities.NewMeeting(in.ProjectID, in.Title, in.Category, in.MeetingDate, in.Attendees, in.Transcript)
	meeting.CreatedBy = in.CreatedBy

	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, errors.ErrDBQueryFailed("create meeting", err)
	}

	s.logger.Info("📝 Meeting submitted",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("category", string(meeting.Category)))
	return meeting, nil
}

// Get retrieves a meeting; soft-deleted meetings stay visible to show their
// status, they just reject processing
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting", err)
	}
	if meeting == nil {
		return nil, errors.ErrMeetingNotFound(id.String())
	}
	return meeting, nil
}

// ListByProject returns a project's meetings, newest first
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]entities.Meeting, error) {
	meetings, err := s.meetings.ListByProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("list meetings", err)
	}
	return meetings, nil
}

// Delete soft-deletes a meeting. Meetings are never physically removed; a
// published meeting cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if meeting.Status == entities.MeetingStatusDeleted {
		return nil
	}

	ok, err := s.meetings.TransitionStatus(ctx, id, deletableStatuses, entities.MeetingStatusDeleted)
	if err != nil {
		return errors.ErrDBQueryFailed("delete meeting", err)
	}
	if !ok {
		return errors.ErrMeetingInvalidState(id.String(), string(meeting.Status), "delete")
	}

	s.logger.Info("🗑️ Meeting soft-deleted", zap.String("meeting_id", id.String()))
	return nil
}
