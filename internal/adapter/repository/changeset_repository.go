package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// ChangeSetRepository handles change-set data operations. All write paths
// that can race (item edits, lock acquisition) are guarded UPDATEs whose
// RowsAffected tells the caller whether it won.
type ChangeSetRepository struct {
	db *gorm.DB
}

// NewChangeSetRepository creates a new change set repository
func NewChangeSetRepository(db *gorm.DB) *ChangeSetRepository {
	return &ChangeSetRepository{db: db}
}

// Replace removes any prior change set for the meeting and installs the new
// one in a single transaction. Reprocessing a meeting supersedes its old
// batch wholesale.
func (r *ChangeSetRepository) Replace(ctx context.Context, cs *entities.ChangeSet) error {
	if cs == nil {
		return errors.New("change set cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", cs.MeetingID).Delete(&entities.ChangeSet{}).Error; err != nil {
			return fmt.Errorf("failed to remove prior change set: %w", err)
		}
		if err := tx.Create(cs).Error; err != nil {
			return fmt.Errorf("failed to create change set: %w", err)
		}
		return nil
	})
}

// FindByMeetingID retrieves the active change set of a meeting
func (r *ChangeSetRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.ChangeSet, error) {
	var cs entities.ChangeSet
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&cs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cs, nil
}

// UpdateItems writes the item list guarded by the presented lock_version.
// The version advances by exactly one per successful write; a stale version
// matches zero rows and reports (0, false, nil) so the caller can surface a
// conflict instead of silently overwriting a concurrent edit.
func (r *ChangeSetRepository) UpdateItems(ctx context.Context, id uuid.UUID, items []entities.ProposedChange, presentedVersion int) (int, bool, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, false, fmt.Errorf("failed to serialize items: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.ChangeSet{}).
		Where("id = ? AND lock_version = ? AND consumed = false", id, presentedVersion).
		Updates(map[string]interface{}{
			"items":        datatypes.JSON(payload),
			"lock_version": presentedVersion + 1,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	return presentedVersion + 1, true, nil
}

// AcquireLock takes the soft edit lock for actor. The guard admits three
// cases: lock free, lock already held by actor (refresh), or lock older than
// expiry (abandoned). A fresh lock held by someone else matches zero rows.
func (r *ChangeSetRepository) AcquireLock(ctx context.Context, id uuid.UUID, actor uuid.UUID, now time.Time, expiry time.Duration) (bool, error) {
	cutoff := now.Add(-expiry)
	result := r.db.WithContext(ctx).
		Model(&entities.ChangeSet{}).
		Where("id = ? AND (locked_by IS NULL OR locked_by = ? OR locked_at < ?)", id, actor, cutoff).
		Updates(map[string]interface{}{
			"locked_by":  actor,
			"locked_at":  now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseLock clears the lock if actor holds it. Releasing a lock you do not
// hold is a no-op, not an error.
func (r *ChangeSetRepository) ReleaseLock(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.ChangeSet{}).
		Where("id = ? AND locked_by = ?", id, actor).
		Updates(map[string]interface{}{
			"locked_by":  nil,
			"locked_at":  nil,
			"updated_at": time.Now(),
		}).Error
}

// MarkConsumed flags the change set as published so it cannot be edited or
// merged again
func (r *ChangeSetRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.ChangeSet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"consumed":   true,
			"locked_by":  nil,
			"locked_at":  nil,
			"updated_at": time.Now(),
		}).Error
}
