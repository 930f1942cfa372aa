package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// RecordRepository defines the interface for canonical record data access
type RecordRepository interface {
	// Create inserts a new canonical record
	Create(ctx context.Context, record *entities.Record) error

	// FindByID retrieves a record by its ID; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Record, error)

	// FindByIDs retrieves the records for the given ids, skipping unknown ones
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Record, error)

	// ListOpen retrieves open records of one kind, most recently updated
	// first, capped at limit
	ListOpen(ctx context.Context, projectID uuid.UUID, kind entities.RecordKind, limit int) ([]entities.Record, error)

	// List retrieves records of a project, optionally filtered by kind
	List(ctx context.Context, projectID uuid.UUID, kind *entities.RecordKind, limit, offset int) ([]entities.Record, error)

	// Update persists a mutated record
	Update(ctx context.Context, record *entities.Record) error

	// Close moves a record to its kind's terminal status. Closing an
	// already-closed record is a no-op; the bool reports whether a
	// transition actually happened.
	Close(ctx context.Context, id uuid.UUID) (bool, error)

	// Supersede marks a decision as superseded with a forward reference to
	// its replacement
	Supersede(ctx context.Context, id, replacementID uuid.UUID) error

	// Delete removes a record permanently (administrative use only)
	Delete(ctx context.Context, id uuid.UUID) error
}
