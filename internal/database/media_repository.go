package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqldb "github.com/choplin/medialedger/internal/database/sqlc"
)

// MediaRepository reads and writes version rows and their resolution links.
type MediaRepository struct {
	ctx     *Context
	queries *sqldb.Queries
}

func NewMediaRepository(dbCtx *Context) *MediaRepository {
	return &MediaRepository{ctx: dbCtx}
}

// WithTx returns a repository whose statements run inside tx.
func (r *MediaRepository) WithTx(tx *sql.Tx) *MediaRepository {
	return &MediaRepository{ctx: r.ctx, queries: sqldb.New(logQueries(tx))}
}

func (r *MediaRepository) q() (*sqldb.Queries, error) {
	if r.queries != nil {
		return r.queries, nil
	}
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("media repository: missing database context")
	}
	return queries, nil
}

// ListByMdmID returns every version of an asset, deleted ones included,
// ascending by version.
func (r *MediaRepository) ListByMdmID(ctx context.Context, mdmID int64) ([]MediaRecord, error) {
	queries, err := r.q()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListMediasByMdmID(ctx, mdmID)
	if err != nil {
		return nil, fmt.Errorf("list medias for mdm id %d: %w", mdmID, err)
	}
	return r.withLinks(ctx, queries, rows)
}

// FindActiveByID returns the row with the given id unless it is missing or
// soft-deleted, in which case it returns nil, nil.
func (r *MediaRepository) FindActiveByID(ctx context.Context, id int64) (*MediaRecord, error) {
	queries, err := r.q()
	if err != nil {
		return nil, err
	}

	row, err := queries.FindActiveMediaByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find media %d: %w", id, err)
	}

	records, err := r.withLinks(ctx, queries, []sqldb.Media{row})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// FindByID returns the row with the given id and its links whether or not it
// is deleted.
func (r *MediaRepository) FindByID(ctx context.Context, id int64) (*MediaRecord, error) {
	queries, err := r.q()
	if err != nil {
		return nil, err
	}

	row, err := queries.FindMediaByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find media %d: %w", id, err)
	}

	records, err := r.withLinks(ctx, queries, []sqldb.Media{row})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// ListCurrent returns, per mdm id, the highest version row when that row is
// not deleted. Ids whose latest version is deleted are skipped.
func (r *MediaRepository) ListCurrent(ctx context.Context) ([]MediaRecord, error) {
	queries, err := r.q()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListCurrentMedias(ctx)
	if err != nil {
		return nil, fmt.Errorf("list current medias: %w", err)
	}
	return r.withLinks(ctx, queries, rows)
}

// Insert writes a version row and its links and returns the new row id.
// Run it inside a transaction so a failed link leaves no partial version.
// A duplicate (mdm_id, version) is reported as media.ErrConflict.
func (r *MediaRepository) Insert(ctx context.Context, rec NewMediaRecord) (int64, error) {
	queries, err := r.q()
	if err != nil {
		return 0, err
	}

	res, err := queries.InsertMedia(ctx, MediaInsertParams(rec))
	if err != nil {
		return 0, translateInsertError(err, "insert media %d version %d", rec.MdmID, rec.Version)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, resolutionID := range rec.ResolutionIDs {
		if err := queries.InsertMediaResolution(ctx, sqldb.InsertMediaResolutionParams{
			MediaID:      id,
			ResolutionID: resolutionID,
		}); err != nil {
			return 0, fmt.Errorf("link media %d to resolution %d: %w", id, resolutionID, err)
		}
	}

	return id, nil
}

// SoftDelete stamps deleted_at on an active row. It returns false when the
// row is missing or already deleted.
func (r *MediaRepository) SoftDelete(ctx context.Context, id int64, at time.Time) (bool, error) {
	queries, err := r.q()
	if err != nil {
		return false, err
	}

	affected, err := queries.SoftDeleteMedia(ctx, sqldb.SoftDeleteMediaParams{DeletedAt: at, ID: id})
	if err != nil {
		return false, fmt.Errorf("soft delete media %d: %w", id, err)
	}
	return affected > 0, nil
}

// CountLinks returns the total number of media_resolutions rows.
func (r *MediaRepository) CountLinks(ctx context.Context) (int64, error) {
	queries, err := r.q()
	if err != nil {
		return 0, err
	}
	return queries.CountMediaResolutions(ctx)
}

func (r *MediaRepository) withLinks(ctx context.Context, queries *sqldb.Queries, rows []sqldb.Media) ([]MediaRecord, error) {
	result := make([]MediaRecord, 0, len(rows))
	for _, row := range rows {
		record := MediaRecordFromRow(row)
		ids, err := queries.ListMediaResolutionIDs(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("list resolution links of media %d: %w", row.ID, err)
		}
		record.ResolutionIDs = ids
		result = append(result, record)
	}
	return result, nil
}
