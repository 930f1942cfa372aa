package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/internal/infrastructure/cache"
	"github.com/meetwise-team/meetwise/pkg/llm"
)

// ChromemIndex is an embedded vector index over a project's canonical
// records. Each project gets its own collection so nearest-neighbor queries
// never cross project boundaries.
type ChromemIndex struct {
	db       *chromem.DB
	embedder llm.Embedder
	vectors  *cache.VectorStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewChromemIndex creates a vector index backed by the given embedder.
// With a non-empty path the index persists across restarts; otherwise it is
// in-memory and rebuilt lazily as records get published.
func NewChromemIndex(embedder llm.Embedder, path string, cacheTTL time.Duration, logger *zap.Logger) (*ChromemIndex, error) {
	var db *chromem.DB
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store at %s: %w", path, err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemIndex{
		db:       db,
		embedder: embedder,
		vectors:  cache.NewVectorStore(),
		cacheTTL: cacheTTL,
		logger:   logger,
	}, nil
}

// Embed computes the embedding vector for a text, consulting the TTL cache
// first so repeated embeds of identical content skip the API call
func (x *ChromemIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashText(text)
	if vector, ok := x.vectors.Get(key); ok {
		return vector, nil
	}

	vector, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	x.vectors.Set(key, vector, x.cacheTTL)
	return vector, nil
}

// Search returns records of the project whose cosine similarity to the
// vector is at or above threshold, best first, capped at limit
func (x *ChromemIndex) Search(ctx context.Context, projectID uuid.UUID, vector []float32, threshold float64, limit int) ([]repositories.SimilarityHit, error) {
	collection, err := x.collection(projectID)
	if err != nil {
		return nil, err
	}

	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	hits := make([]repositories.SimilarityHit, 0, len(results))
	for _, result := range results {
		if float64(result.Similarity) < threshold {
			continue
		}
		recordID, err := uuid.Parse(result.ID)
		if err != nil {
			x.logger.Warn("⚠️ Skipping index entry with malformed id", zap.String("id", result.ID))
			continue
		}
		hits = append(hits, repositories.SimilarityHit{
			RecordID: recordID,
			Kind:     entities.RecordKind(result.Metadata["kind"]),
			Score:    float64(result.Similarity),
		})
	}
	return hits, nil
}

// IndexRecord adds or refreshes a record in its project's collection
func (x *ChromemIndex) IndexRecord(ctx context.Context, record *entities.Record) error {
	collection, err := x.collection(record.ProjectID)
	if err != nil {
		return err
	}

	text := record.EmbeddingText()
	vector, err := x.Embed(ctx, text)
	if err != nil {
		return err
	}

	err = collection.AddDocument(ctx, chromem.Document{
		ID:        record.ID.String(),
		Metadata:  map[string]string{"kind": string(record.Kind)},
		Embedding: vector,
		Content:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to index record %s: %w", record.ID, err)
	}
	return nil
}

// RemoveRecord drops a record from the project's collection
func (x *ChromemIndex) RemoveRecord(ctx context.Context, projectID, recordID uuid.UUID) error {
	collection, err := x.collection(projectID)
	if err != nil {
		return err
	}
	if err := collection.Delete(ctx, nil, nil, recordID.String()); err != nil {
		return fmt.Errorf("failed to remove record %s from index: %w", recordID, err)
	}
	return nil
}

func (x *ChromemIndex) collection(projectID uuid.UUID) (*chromem.Collection, error) {
	name := "records-" + projectID.String()
	collection, err := x.db.GetOrCreateCollection(name, nil, x.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	return collection, nil
}

// embeddingFunc bridges the embedder into chromem's callback shape. Documents
// are always added with precomputed embeddings, so this only fires if chromem
// needs to embed on its own.
func (x *ChromemIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return x.Embed(ctx, text)
	}
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
