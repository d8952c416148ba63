package services

import (
	"context"
	"fmt"

	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/media"
)

// ResolutionPool is the deduplicated catalog of resolution specs shared by
// every asset version. Rows are keyed by (width, height, ppi) and are never
// updated or removed.
type ResolutionPool struct {
	repo *database.ResolutionRepository
}

// NewResolutionPool creates a new ResolutionPool.
func NewResolutionPool(ctx *database.Context) *ResolutionPool {
	return &ResolutionPool{repo: database.NewResolutionRepository(ctx)}
}

// EnsureAll inserts every spec that is not pooled yet. Existing triples are
// skipped, including ones inserted concurrently by another caller.
func (p *ResolutionPool) EnsureAll(ctx context.Context, specs []media.ResolutionSpec) error {
	for _, spec := range dedupeSpecs(specs) {
		if err := p.repo.InsertIfAbsent(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up the pooled row for spec. It fails with media.ErrNotFound
// if EnsureAll has not stored it.
func (p *ResolutionPool) Resolve(ctx context.Context, spec media.ResolutionSpec) (media.Resolution, error) {
	resolution, err := p.repo.FindBySpec(ctx, spec)
	if err != nil {
		return media.Resolution{}, err
	}
	if resolution == nil {
		return media.Resolution{}, fmt.Errorf("resolution %s: %w", spec, media.ErrNotFound)
	}
	return *resolution, nil
}

// ResolveMany returns the rows for ids in request order. A requested id with
// no row means a link points outside the pool and is reported as
// media.ErrDataCorruption.
func (p *ResolutionPool) ResolveMany(ctx context.Context, ids []int64) ([]media.Resolution, error) {
	if len(ids) == 0 {
		return []media.Resolution{}, nil
	}

	rows, err := p.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]media.Resolution, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	result := make([]media.Resolution, 0, len(ids))
	for _, id := range ids {
		resolution, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("resolution id %d is not stored: %w", id, media.ErrDataCorruption)
		}
		result = append(result, resolution)
	}
	return result, nil
}

// ResolveSpecs ensures specs are pooled and returns their rows, one per
// distinct triple in first-seen order.
func (p *ResolutionPool) ResolveSpecs(ctx context.Context, specs []media.ResolutionSpec) ([]media.Resolution, error) {
	unique := dedupeSpecs(specs)
	if err := p.EnsureAll(ctx, unique); err != nil {
		return nil, err
	}

	result := make([]media.Resolution, 0, len(unique))
	for _, spec := range unique {
		resolution, err := p.Resolve(ctx, spec)
		if err != nil {
			return nil, err
		}
		result = append(result, resolution)
	}
	return result, nil
}

func dedupeSpecs(specs []media.ResolutionSpec) []media.ResolutionSpec {
	seen := make(map[media.ResolutionSpec]struct{}, len(specs))
	result := make([]media.ResolutionSpec, 0, len(specs))
	for _, spec := range specs {
		if _, ok := seen[spec]; ok {
			continue
		}
		seen[spec] = struct{}{}
		result = append(result, spec)
	}
	return result
}

func resolutionIDs(resolutions []media.Resolution) []int64 {
	ids := make([]int64, 0, len(resolutions))
	for _, r := range resolutions {
		ids = append(ids, r.ID)
	}
	return ids
}
