package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// ChangeSetRepository defines the interface for change-set data access.
// Implementations must provide the optimistic-version and soft-lock
// semantics as guarded writes: a write either applies atomically or reports
// that it lost the race.
type ChangeSetRepository interface {
	// Replace atomically removes any prior change set for the meeting and
	// installs the new one (reprocessing supersedes the old batch).
	Replace(ctx context.Context, cs *entities.ChangeSet) error

	// FindByMeetingID retrieves the active change set of a meeting; returns
	// nil when absent
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.ChangeSet, error)

	// UpdateItems writes the item list, guarded by the presented
	// lock_version. On success the stored version is incremented by exactly
	// one and returned; a stale version yields (0, false, nil).
	UpdateItems(ctx context.Context, id uuid.UUID, items []entities.ProposedChange, presentedVersion int) (newVersion int, ok bool, err error)

	// AcquireLock takes the soft edit lock for actor when the lock is free,
	// already held by actor, or expired (older than expiry). Returns false
	// when someone else holds a fresh lock.
	AcquireLock(ctx context.Context, id uuid.UUID, actor uuid.UUID, now time.Time, expiry time.Duration) (bool, error)

	// ReleaseLock clears the lock if actor holds it
	ReleaseLock(ctx context.Context, id uuid.UUID, actor uuid.UUID) error

	// MarkConsumed flags the change set as published
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}
