package contextsel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/pkg/config"
)

// Selection is the bounded grounding context handed to extraction, plus
// provenance stats describing how it was chosen
type Selection struct {
	Records []entities.Record
	Stats   entities.ContextStats
}

// Selector picks which open records are relevant enough to ground an
// extraction, under a fixed size cap
type Selector struct {
	records repositories.RecordRepository
	index   repositories.SimilarityIndex
	cfg     *config.PipelineConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewSelector creates a context selector
func NewSelector(records repositories.RecordRepository, index repositories.SimilarityIndex, cfg *config.PipelineConfig, logger *zap.Logger) *Selector {
	return &Selector{
		records: records,
		index:   index,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Select returns a bounded set of open records to use as extraction
// grounding. When the project's open set already fits under the cap the whole
// set passes through unfiltered. Otherwise similarity against the transcript
// decides, unioned with anything updated inside the recency window so very
// recent activity is never silently dropped. Embedding or index failures
// degrade to a pure recency ordering instead of failing the pipeline.
func (s *Selector) Select(ctx context.Context, projectID uuid.UUID, transcript string) (*Selection, error) {
	cap := s.cfg.ContextCap

	// Fetch cap+1 per kind so we can tell "fits under the cap" from "needs
	// filtering" without a count query.
	open := make([]entities.Record, 0, 3*(cap+1))
	for _, kind := range entities.AllRecordKinds {
		records, err := s.records.ListOpen(ctx, projectID, kind, cap+1)
		if err != nil {
			return nil, err
		}
		open = append(open, records...)
	}

	if len(open) <= cap {
		s.logger.Debug("📎 Context passthrough",
			zap.String("project_id", projectID.String()),
			zap.Int("records", len(open)))
		return &Selection{
			Records: open,
			Stats:   statsFor(entities.ContextMethodPassthrough, open),
		}, nil
	}

	selection, err := s.selectBySimilarity(ctx, projectID, transcript, open)
	if err != nil {
		s.logger.Warn("⚠️ Similarity selection failed, falling back to recency",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return s.selectByRecency(open), nil
	}
	return selection, nil
}

func (s *Selector) selectBySimilarity(ctx context.Context, projectID uuid.UUID, transcript string, open []entities.Record) (*Selection, error) {
	sample := transcript
	if len(sample) > s.cfg.TranscriptSample {
		sample = sample[:s.cfg.TranscriptSample]
	}

	vector, err := s.index.Embed(ctx, sample)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, projectID, vector, s.cfg.SimilarityThreshold, s.cfg.ContextCap)
	if err != nil {
		return nil, err
	}

	wanted := make(map[uuid.UUID]bool, len(hits))
	for _, hit := range hits {
		wanted[hit.RecordID] = true
	}

	// Recency union: anything touched inside the window stays in regardless
	// of its similarity score.
	cutoff := s.now().Add(-s.cfg.RecencyWindow)
	for _, record := range open {
		if record.UpdatedAt.After(cutoff) {
			wanted[record.ID] = true
		}
	}

	selected := make([]entities.Record, 0, len(wanted))
	byID := make(map[uuid.UUID]bool, len(open))
	for _, record := range open {
		byID[record.ID] = true
		if wanted[record.ID] {
			selected = append(selected, record)
		}
	}

	// The index may know records the recency-bounded fetch missed; pull the
	// remainder from the store.
	missing := make([]uuid.UUID, 0)
	for id := range wanted {
		if !byID[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		extra, err := s.records.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, record := range extra {
			if !record.IsClosed() {
				selected = append(selected, record)
			}
		}
	}

	s.logger.Debug("📎 Context selected by similarity",
		zap.String("project_id", projectID.String()),
		zap.Int("hits", len(hits)),
		zap.Int("selected", len(selected)))

	return &Selection{
		Records: selected,
		Stats:   statsFor(entities.ContextMethodSimilarity, selected),
	}, nil
}

// selectByRecency keeps the most recently updated records, capped per kind,
// preserving the per-kind recency order the repository returned
func (s *Selector) selectByRecency(open []entities.Record) *Selection {
	perKind := s.cfg.ContextCap / len(entities.AllRecordKinds)
	if perKind == 0 {
		perKind = 1
	}

	counts := make(map[entities.RecordKind]int, len(entities.AllRecordKinds))
	selected := make([]entities.Record, 0, s.cfg.ContextCap)
	for _, record := range open {
		if counts[record.Kind] >= perKind {
			continue
		}
		counts[record.Kind]++
		selected = append(selected, record)
	}

	return &Selection{
		Records: selected,
		Stats:   statsFor(entities.ContextMethodRecency, selected),
	}
}

func statsFor(method string, records []entities.Record) entities.ContextStats {
	stats := entities.ContextStats{Method: method}
	for _, record := range records {
		switch record.Kind {
		case entities.RecordKindActionItem:
			stats.ActionItems++
		case entities.RecordKindDecision:
			stats.Decisions++
		case entities.RecordKindRisk:
			stats.Risks++
		}
	}
	return stats
}
