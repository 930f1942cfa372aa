package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// RosterRepository defines the interface for project roster access
type RosterRepository interface {
	// GetRoster retrieves a project's members and contacts
	GetRoster(ctx context.Context, projectID uuid.UUID) (*entities.Roster, error)
}
