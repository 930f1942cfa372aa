package owner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/pkg/config"
)

// Resolver maps free-text owner hints onto canonical identities. Resolution
// itself is a pure function over the roster and hint; the resolver only adds
// roster fetching and index caching around it.
type Resolver struct {
	rosters repositories.RosterRepository
	cache   *indexCache
	cfg     *config.PipelineConfig
	logger  *zap.Logger
}

// NewResolver creates an owner resolver
func NewResolver(rosters repositories.RosterRepository, cfg *config.PipelineConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		rosters: rosters,
		cache:   newIndexCache(cfg.FuzzyIndexTTL),
		cfg:     cfg,
		logger:  logger,
	}
}

// Resolve runs the cascade for one hint against a project's roster and the
// meeting's attendee list
func (r *Resolver) Resolve(ctx context.Context, projectID uuid.UUID, hint entities.OwnerHint, attendees []entities.Attendee) (entities.ResolvedOwner, error) {
	roster, err := r.rosters.GetRoster(ctx, projectID)
	if err != nil {
		return entities.ResolvedOwner{}, err
	}
	return r.resolveAgainst(roster, hint, attendees), nil
}

// ResolveAll resolves every proposed item's owner hint in one pass, fetching
// the roster once. The returned slice is keyed the same way the input is.
func (r *Resolver) ResolveAll(ctx context.Context, projectID uuid.UUID, hints []entities.OwnerHint, attendees []entities.Attendee) ([]entities.ResolvedOwner, error) {
	roster, err := r.rosters.GetRoster(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resolved := make([]entities.ResolvedOwner, len(hints))
	for i, hint := range hints {
		resolved[i] = r.resolveAgainst(roster, hint, attendees)
	}
	return resolved, nil
}

func (r *Resolver) resolveAgainst(roster *entities.Roster, hint entities.OwnerHint, attendees []entities.Attendee) entities.ResolvedOwner {
	in := matchInput{
		hint:           hint,
		roster:         roster,
		attendees:      attendees,
		index:          r.cache.get(roster),
		acceptance:     r.cfg.FuzzyAcceptance,
		highConfidence: r.cfg.FuzzyHighConfidence,
		maxCandidates:  r.cfg.MaxOwnerCandidates,
	}

	for _, match := range cascade {
		if result := match(in); result != nil {
			r.logger.Debug("👤 Owner resolved",
				zap.String("hint", hint.Name),
				zap.String("status", string(result.Status)),
				zap.Float64("confidence", result.Confidence))
			return *result
		}
	}

	// The fuzzy matcher always answers; this is unreachable unless the
	// cascade is misconfigured.
	return entities.ResolvedOwner{
		Name:   hint.Name,
		Email:  hint.Email,
		Status: entities.OwnerStatusUnknown,
	}
}
