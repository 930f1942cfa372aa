package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// ListByProject retrieves a project's meetings, newest first
func (r *MeetingRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]entities.Meeting, error) {
	var meetings []entities.Meeting
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND status <> ?", projectID, entities.MeetingStatusDeleted).
		Order("meeting_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// TransitionStatus atomically moves a meeting between statuses.
// Uses a status-guarded UPDATE so only one of several racing callers wins.
func (r *MeetingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetFailure moves a meeting to failed with a human-readable reason
func (r *MeetingRepository) SetFailure(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         entities.MeetingStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		}).Error
}
