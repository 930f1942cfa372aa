package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// RosterRepository handles project roster data operations
type RosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(db *gorm.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetRoster retrieves a project's members and contacts
func (r *RosterRepository) GetRoster(ctx context.Context, projectID uuid.UUID) (*entities.Roster, error) {
	var members []entities.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	var contacts []entities.ProjectContact
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}

	return &entities.Roster{Members: members, Contacts: contacts}, nil
}
