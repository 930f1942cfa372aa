package review

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
)

// duplicateThreshold is the similarity above which a proposed create is
// flagged as a likely duplicate of an existing record
const duplicateThreshold = 0.85

// assembleKinds fixes the iteration order so assembled change sets are stable
var assembleKinds = []entities.RecordKind{
	entities.RecordKindActionItem,
	entities.RecordKindDecision,
	entities.RecordKindRisk,
}

// Assembler converts a validated extraction result plus resolved owners into
// a reviewable change set
type Assembler struct {
	index  repositories.SimilarityIndex
	logger *zap.Logger
}

// NewAssembler creates a change set assembler
func NewAssembler(index repositories.SimilarityIndex, logger *zap.Logger) *Assembler {
	return &Assembler{index: index, logger: logger}
}

// Assemble builds the proposed change set for a meeting. Items whose owner
// resolution is settled start pre-accepted; ambiguous and unknown owners
// start rejected so a merge can never pick them up without human input.
// Proposed creates are annotated with a duplicate_of reference when the
// similarity index knows a close existing record; index failures here only
// cost the annotation, never the change set.
func (a *Assembler) Assemble(ctx context.Context, meeting *entities.Meeting, result *entities.ExtractionResult, owners map[entities.RecordKind][]entities.ResolvedOwner, stats entities.ContextStats) *entities.ChangeSet {
	byKind := result.ItemsByKind()

	var changes []entities.ProposedChange
	for _, kind := range assembleKinds {
		items := byKind[kind]
		for i, item := range items {
			change := entities.ProposedChange{
				ID:            uuid.New(),
				Kind:          kind,
				Item:          item,
				ResolvedOwner: owners[kind][i],
				Accepted:      owners[kind][i].IsMergeable(),
			}
			if item.Operation == entities.OperationCreate {
				a.annotateDuplicate(ctx, meeting.ProjectID, &change)
			}
			changes = append(changes, change)
		}
	}

	cs := entities.NewChangeSet(meeting.ID, changes)
	cs.Recap = result.Recap
	cs.Tone = result.Tone
	cs.Fishbone = result.Fishbone
	cs.Context = stats
	return cs
}

func (a *Assembler) annotateDuplicate(ctx context.Context, projectID uuid.UUID, change *entities.ProposedChange) {
	text := change.Item.Title
	if change.Item.Description != "" {
		text += "\n" + change.Item.Description
	}

	vector, err := a.index.Embed(ctx, text)
	if err != nil {
		a.logger.Debug("⚠️ Duplicate check skipped, embed failed", zap.Error(err))
		return
	}

	hits, err := a.index.Search(ctx, projectID, vector, duplicateThreshold, 3)
	if err != nil {
		a.logger.Debug("⚠️ Duplicate check skipped, search failed", zap.Error(err))
		return
	}

	for _, hit := range hits {
		if hit.Kind != change.Kind {
			continue
		}
		id := hit.RecordID
		change.DuplicateOf = &id
		change.Similarity = hit.Score
		return
	}
}
