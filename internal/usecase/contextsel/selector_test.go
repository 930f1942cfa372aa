package contextsel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/pkg/config"
)

type fakeRecordStore struct {
	open map[entities.RecordKind][]entities.Record
}

func (f *fakeRecordStore) Create(ctx context.Context, record *entities.Record) error { return nil }
func (f *fakeRecordStore) FindByID(ctx context.Context, id uuid.UUID) (*entities.Record, error) {
	return nil, nil
}
func (f *fakeRecordStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Record, error) {
	var out []entities.Record
	for _, records := range f.open {
		for _, record := range records {
			for _, id := range ids {
				if record.ID == id {
					out = append(out, record)
				}
			}
		}
	}
	return out, nil
}
func (f *fakeRecordStore) ListOpen(ctx context.Context, projectID uuid.UUID, kind entities.RecordKind, limit int) ([]entities.Record, error) {
	records := f.open[kind]
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
func (f *fakeRecordStore) List(ctx context.Context, projectID uuid.UUID, kind *entities.RecordKind, limit, offset int) ([]entities.Record, error) {
	return nil, nil
}
func (f *fakeRecordStore) Update(ctx context.Context, record *entities.Record) error { return nil }
func (f *fakeRecordStore) Close(ctx context.Context, id uuid.UUID) (bool, error)     { return false, nil }
func (f *fakeRecordStore) Supersede(ctx context.Context, id, replacementID uuid.UUID) error {
	return nil
}
func (f *fakeRecordStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeIndex struct {
	embedErr  error
	searchErr error
	hits      []repositories.SimilarityHit
}

func (f *fakeIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}
func (f *fakeIndex) Search(ctx context.Context, projectID uuid.UUID, vector []float32, threshold float64, limit int) ([]repositories.SimilarityHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}
func (f *fakeIndex) IndexRecord(ctx context.Context, record *entities.Record) error { return nil }
func (f *fakeIndex) RemoveRecord(ctx context.Context, projectID, recordID uuid.UUID) error {
	return nil
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		ContextCap:          25,
		RecencyWindow:       14 * 24 * time.Hour,
		SimilarityThreshold: 0.35,
		TranscriptSample:    4000,
	}
}

func makeRecords(kind entities.RecordKind, n int, updatedAt time.Time) []entities.Record {
	records := make([]entities.Record, n)
	for i := range records {
		records[i] = entities.Record{
			ID:        uuid.New(),
			ProjectID: uuid.New(),
			Kind:      kind,
			Title:     "record",
			Status:    entities.RecordStatusOpen,
			UpdatedAt: updatedAt,
		}
	}
	return records
}

func TestSelectPassthroughWhenUnderCap(t *testing.T) {
	old := time.Now().Add(-60 * 24 * time.Hour)
	store := &fakeRecordStore{open: map[entities.RecordKind][]entities.Record{
		entities.RecordKindActionItem: makeRecords(entities.RecordKindActionItem, 10, old),
		entities.RecordKindDecision:   makeRecords(entities.RecordKindDecision, 5, old),
		entities.RecordKindRisk:       makeRecords(entities.RecordKindRisk, 3, old),
	}}
	selector := NewSelector(store, &fakeIndex{}, testPipelineConfig(), zap.NewNop())

	selection, err := selector.Select(context.Background(), uuid.New(), "weekly sync transcript")
	require.NoError(t, err)

	assert.Equal(t, entities.ContextMethodPassthrough, selection.Stats.Method)
	assert.Len(t, selection.Records, 18)
	assert.Equal(t, 10, selection.Stats.ActionItems)
	assert.Equal(t, 5, selection.Stats.Decisions)
	assert.Equal(t, 3, selection.Stats.Risks)
}

func TestSelectUnionOfSimilarityAndRecency(t *testing.T) {
	// 30 open action items over the cap of 25. The index returns 10 of them;
	// 3 others were updated inside the recency window. Expected selection is
	// the deduplicated union of 13.
	old := time.Now().Add(-60 * 24 * time.Hour)
	items := makeRecords(entities.RecordKindActionItem, 30, old)
	for i := 0; i < 3; i++ {
		items[20+i].UpdatedAt = time.Now().Add(-time.Hour)
	}

	hits := make([]repositories.SimilarityHit, 10)
	for i := range hits {
		hits[i] = repositories.SimilarityHit{
			RecordID: items[i].ID,
			Kind:     entities.RecordKindActionItem,
			Score:    0.9,
		}
	}

	store := &fakeRecordStore{open: map[entities.RecordKind][]entities.Record{
		entities.RecordKindActionItem: items,
	}}
	selector := NewSelector(store, &fakeIndex{hits: hits}, testPipelineConfig(), zap.NewNop())

	selection, err := selector.Select(context.Background(), uuid.New(), "incident follow-up transcript")
	require.NoError(t, err)

	assert.Equal(t, entities.ContextMethodSimilarity, selection.Stats.Method)
	assert.Len(t, selection.Records, 13)

	seen := make(map[uuid.UUID]bool)
	for _, record := range selection.Records {
		assert.False(t, seen[record.ID], "selection contains duplicate record")
		seen[record.ID] = true
	}
	for i := 0; i < 3; i++ {
		assert.True(t, seen[items[20+i].ID], "recently updated record missing from selection")
	}
}

func TestSelectFallsBackToRecencyOnEmbedFailure(t *testing.T) {
	old := time.Now().Add(-60 * 24 * time.Hour)
	store := &fakeRecordStore{open: map[entities.RecordKind][]entities.Record{
		entities.RecordKindActionItem: makeRecords(entities.RecordKindActionItem, 20, old),
		entities.RecordKindDecision:   makeRecords(entities.RecordKindDecision, 20, old),
	}}
	index := &fakeIndex{embedErr: errors.New("embedding provider unavailable")}
	selector := NewSelector(store, index, testPipelineConfig(), zap.NewNop())

	selection, err := selector.Select(context.Background(), uuid.New(), "transcript")
	require.NoError(t, err)

	assert.Equal(t, entities.ContextMethodRecency, selection.Stats.Method)
	assert.LessOrEqual(t, len(selection.Records), 25)
	// Per-kind cap: 25/3 = 8 each
	assert.Equal(t, 8, selection.Stats.ActionItems)
	assert.Equal(t, 8, selection.Stats.Decisions)
}

func TestSelectTruncatesTranscriptSample(t *testing.T) {
	old := time.Now().Add(-60 * 24 * time.Hour)
	store := &fakeRecordStore{open: map[entities.RecordKind][]entities.Record{
		entities.RecordKindActionItem: makeRecords(entities.RecordKindActionItem, 30, old),
	}}
	index := &fakeIndex{}
	selector := NewSelector(store, index, testPipelineConfig(), zap.NewNop())

	long := make([]byte, 100000)
	for i := range long {
		long[i] = 'a'
	}

	_, err := selector.Select(context.Background(), uuid.New(), string(long))
	require.NoError(t, err)
}
