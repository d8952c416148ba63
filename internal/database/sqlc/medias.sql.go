package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const mediaColumns = `id, mdm_id, version, name, owner, state, address, region, sub_region, locality,
       total_monitor_count, working_monitor_count, management_monitor_count, household_count,
       created_at, deleted_at`

func scanMedia(scanner interface{ Scan(dest ...any) error }) (Media, error) {
	var i Media
	err := scanner.Scan(
		&i.ID,
		&i.MdmID,
		&i.Version,
		&i.Name,
		&i.Owner,
		&i.State,
		&i.Address,
		&i.Region,
		&i.SubRegion,
		&i.Locality,
		&i.TotalMonitorCount,
		&i.WorkingMonitorCount,
		&i.ManagementMonitorCount,
		&i.HouseholdCount,
		&i.CreatedAt,
		&i.DeletedAt,
	)
	return i, err
}

func collectMedias(rows *sql.Rows) ([]Media, error) {
	defer rows.Close()
	var items []Media
	for rows.Next() {
		i, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMediasByMdmID = `SELECT ` + mediaColumns + `
FROM medias
WHERE mdm_id = ?
ORDER BY version`

func (q *Queries) ListMediasByMdmID(ctx context.Context, mdmID int64) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx, listMediasByMdmID, mdmID)
	if err != nil {
		return nil, err
	}
	return collectMedias(rows)
}

const findActiveMediaByID = `SELECT ` + mediaColumns + `
FROM medias
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) FindActiveMediaByID(ctx context.Context, id int64) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, findActiveMediaByID, id))
}

const findMediaByID = `SELECT ` + mediaColumns + `
FROM medias
WHERE id = ?`

func (q *Queries) FindMediaByID(ctx context.Context, id int64) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, findMediaByID, id))
}

const listCurrentMedias = `SELECT m.id, m.mdm_id, m.version, m.name, m.owner, m.state, m.address, m.region, m.sub_region, m.locality,
       m.total_monitor_count, m.working_monitor_count, m.management_monitor_count, m.household_count,
       m.created_at, m.deleted_at
FROM medias m
JOIN (
    SELECT mdm_id, MAX(version) AS version
    FROM medias
    GROUP BY mdm_id
) latest ON latest.mdm_id = m.mdm_id AND latest.version = m.version
WHERE m.deleted_at IS NULL
ORDER BY m.mdm_id`

func (q *Queries) ListCurrentMedias(ctx context.Context) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx, listCurrentMedias)
	if err != nil {
		return nil, err
	}
	return collectMedias(rows)
}

const insertMedia = `INSERT INTO medias (
    mdm_id, version, name, owner, state, address, region, sub_region, locality,
    total_monitor_count, working_monitor_count, management_monitor_count, household_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertMediaParams struct {
	MdmID                  int64
	Version                int64
	Name                   string
	Owner                  string
	State                  string
	Address                string
	Region                 string
	SubRegion              string
	Locality               string
	TotalMonitorCount      int64
	WorkingMonitorCount    int64
	ManagementMonitorCount int64
	HouseholdCount         int64
}

func (q *Queries) InsertMedia(ctx context.Context, arg InsertMediaParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertMedia,
		arg.MdmID,
		arg.Version,
		arg.Name,
		arg.Owner,
		arg.State,
		arg.Address,
		arg.Region,
		arg.SubRegion,
		arg.Locality,
		arg.TotalMonitorCount,
		arg.WorkingMonitorCount,
		arg.ManagementMonitorCount,
		arg.HouseholdCount,
	)
}

const softDeleteMedia = `UPDATE medias SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

type SoftDeleteMediaParams struct {
	DeletedAt time.Time
	ID        int64
}

func (q *Queries) SoftDeleteMedia(ctx context.Context, arg SoftDeleteMediaParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, softDeleteMedia, arg.DeletedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertMediaResolution = `INSERT INTO media_resolutions (media_id, resolution_id) VALUES (?, ?)`

type InsertMediaResolutionParams struct {
	MediaID      int64
	ResolutionID int64
}

func (q *Queries) InsertMediaResolution(ctx context.Context, arg InsertMediaResolutionParams) error {
	_, err := q.db.ExecContext(ctx, insertMediaResolution, arg.MediaID, arg.ResolutionID)
	return err
}

const listMediaResolutionIDs = `SELECT resolution_id FROM media_resolutions WHERE media_id = ? ORDER BY resolution_id`

func (q *Queries) ListMediaResolutionIDs(ctx context.Context, mediaID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listMediaResolutionIDs, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var resolutionID int64
		if err := rows.Scan(&resolutionID); err != nil {
			return nil, err
		}
		items = append(items, resolutionID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countMediaResolutions = `SELECT COUNT(*) FROM media_resolutions`

func (q *Queries) CountMediaResolutions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMediaResolutions)
	var count int64
	err := row.Scan(&count)
	return count, err
}
