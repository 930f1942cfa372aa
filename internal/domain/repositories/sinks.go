package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// MetricsSink receives model-attempt telemetry. Implementations are
// fire-and-forget: a sink failure must never fail the pipeline.
type MetricsSink interface {
	RecordAttempt(ctx context.Context, attempt entities.ModelAttempt)
}

// AuditRepository records canonical-data mutations for the audit trail
type AuditRepository interface {
	RecordChange(ctx context.Context, entry *entities.AuditEntry) error
}

// SimilarityHit is one nearest-neighbor result
type SimilarityHit struct {
	RecordID uuid.UUID
	Kind     entities.RecordKind
	Score    float64
}

// SimilarityIndex wraps the embedding call and the nearest-neighbor query
// over a project's records
type SimilarityIndex interface {
	// Embed computes the embedding vector for a text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Search returns records of the project whose similarity to the vector
	// is at or above threshold, best first, capped at limit
	Search(ctx context.Context, projectID uuid.UUID, vector []float32, threshold float64, limit int) ([]SimilarityHit, error)

	// IndexRecord adds or refreshes a record in the project's index
	IndexRecord(ctx context.Context, record *entities.Record) error

	// RemoveRecord drops a record from the project's index
	RemoveRecord(ctx context.Context, projectID, recordID uuid.UUID) error
}
