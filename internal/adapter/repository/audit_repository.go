package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// AuditRepository persists the merge audit trail
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordChange appends one audit entry
func (r *AuditRepository) RecordChange(ctx context.Context, entry *entities.AuditEntry) error {
	if entry == nil {
		return errors.New("audit entry cannot be nil")
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
