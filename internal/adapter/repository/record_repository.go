package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// RecordRepository handles canonical record data operations
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new canonical record
func (r *RecordRepository) Create(ctx context.Context, record *entities.Record) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID retrieves a record by ID
func (r *RecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Record, error) {
	var record entities.Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDs retrieves the records for the given ids, skipping unknown ones
func (r *RecordRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []entities.Record
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListOpen retrieves open records of one kind, most recently updated first
func (r *RecordRepository) ListOpen(ctx context.Context, projectID uuid.UUID, kind entities.RecordKind, limit int) ([]entities.Record, error) {
	var records []entities.Record
	if limit == 0 {
		limit = 25
	}
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND kind = ? AND status IN ?", projectID, kind, entities.OpenStatusesFor(kind)).
		Order("updated_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// List retrieves records of a project, optionally filtered by kind
func (r *RecordRepository) List(ctx context.Context, projectID uuid.UUID, kind *entities.RecordKind, limit, offset int) ([]entities.Record, error) {
	var records []entities.Record
	if limit == 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if err := query.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Update persists a mutated record
func (r *RecordRepository) Update(ctx context.Context, record *entities.Record) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	record.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Record{}).
		Where("id = ?", record.ID).
		Save(record).Error
}

// Close moves a record to its kind's terminal status. Idempotent: closing an
// already-closed record affects zero rows and reports false, so callers can
// skip duplicate audit entries.
func (r *RecordRepository) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	record, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, gorm.ErrRecordNotFound
	}

	closed := entities.ClosedStatusFor(record.Kind)
	result := r.db.WithContext(ctx).
		Model(&entities.Record{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatusesFor(record.Kind)).
		Updates(map[string]interface{}{
			"status":     closed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Supersede marks a decision as superseded with a forward reference
func (r *RecordRepository) Supersede(ctx context.Context, id, replacementID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Record{}).
		Where("id = ? AND kind = ?", id, entities.RecordKindDecision).
		Updates(map[string]interface{}{
			"status":           entities.DecisionStatusSuperseded,
			"superseded_by_id": replacementID,
			"updated_at":       time.Now(),
		}).Error
}

// Delete removes a record permanently (administrative use only)
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Record{}, "id = ?", id).Error
}

// terminalStatusesFor lists the statuses a close must not overwrite
func terminalStatusesFor(kind entities.RecordKind) []string {
	if kind == entities.RecordKindDecision {
		return []string{entities.DecisionStatusSuperseded, entities.DecisionStatusArchived}
	}
	return []string{entities.RecordStatusClosed}
}
