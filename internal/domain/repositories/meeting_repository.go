package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create inserts a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// ListByProject retrieves a project's meetings, newest first
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]entities.Meeting, error)

	// TransitionStatus atomically moves a meeting from one of the given
	// statuses to the target status. Returns false when the meeting was not
	// in any of the expected statuses (the transition lost the race or was
	// never legal).
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus) (bool, error)

	// SetFailure moves a meeting to failed with a single human-readable
	// reason
	SetFailure(ctx context.Context, id uuid.UUID, reason string) error
}
