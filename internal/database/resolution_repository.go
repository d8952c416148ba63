package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/choplin/medialedger/internal/media"
	sqldb "github.com/choplin/medialedger/internal/database/sqlc"
)

// ResolutionRepository addresses the shared resolutions table.
type ResolutionRepository struct {
	ctx *Context
}

func NewResolutionRepository(dbCtx *Context) *ResolutionRepository {
	return &ResolutionRepository{ctx: dbCtx}
}

// InsertIfAbsent adds spec unless the triple is already stored.
func (r *ResolutionRepository) InsertIfAbsent(ctx context.Context, spec media.ResolutionSpec) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("resolution repository: missing database context")
	}

	if err := queries.InsertResolutionIfAbsent(ctx, sqldb.InsertResolutionIfAbsentParams{
		Width:  spec.Width,
		Height: spec.Height,
		Ppi:    spec.PPI,
	}); err != nil {
		return fmt.Errorf("insert resolution %s: %w", spec, err)
	}
	return nil
}

// FindBySpec returns the row for the triple, or nil, nil when absent.
func (r *ResolutionRepository) FindBySpec(ctx context.Context, spec media.ResolutionSpec) (*media.Resolution, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("resolution repository: missing database context")
	}

	row, err := queries.FindResolutionBySpec(ctx, sqldb.FindResolutionBySpecParams{
		Width:  spec.Width,
		Height: spec.Height,
		Ppi:    spec.PPI,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find resolution %s: %w", spec, err)
	}

	resolution := ResolutionFromRow(row)
	return &resolution, nil
}

// ListByIDs returns the stored rows among ids, ascending by id. Missing ids
// are silently absent from the result.
func (r *ResolutionRepository) ListByIDs(ctx context.Context, ids []int64) ([]media.Resolution, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("resolution repository: missing database context")
	}

	rows, err := queries.ListResolutionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}

	result := make([]media.Resolution, 0, len(rows))
	for _, row := range rows {
		result = append(result, ResolutionFromRow(row))
	}
	return result, nil
}

// Count returns the number of pooled resolutions.
func (r *ResolutionRepository) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("resolution repository: missing database context")
	}
	return queries.CountResolutions(ctx)
}
