package sqldb

import (
	"context"
	"strings"
)

const insertResolutionIfAbsent = `INSERT INTO resolutions (width, height, ppi)
VALUES (?, ?, ?)
ON CONFLICT (width, height, ppi) DO NOTHING`

type InsertResolutionIfAbsentParams struct {
	Width  int64
	Height int64
	Ppi    int64
}

func (q *Queries) InsertResolutionIfAbsent(ctx context.Context, arg InsertResolutionIfAbsentParams) error {
	_, err := q.db.ExecContext(ctx, insertResolutionIfAbsent, arg.Width, arg.Height, arg.Ppi)
	return err
}

const findResolutionBySpec = `SELECT id, width, height, ppi, created_at
FROM resolutions
WHERE width = ? AND height = ? AND ppi = ?`

type FindResolutionBySpecParams struct {
	Width  int64
	Height int64
	Ppi    int64
}

func (q *Queries) FindResolutionBySpec(ctx context.Context, arg FindResolutionBySpecParams) (Resolution, error) {
	row := q.db.QueryRowContext(ctx, findResolutionBySpec, arg.Width, arg.Height, arg.Ppi)
	var i Resolution
	err := row.Scan(
		&i.ID,
		&i.Width,
		&i.Height,
		&i.Ppi,
		&i.CreatedAt,
	)
	return i, err
}

const listResolutionsByIDs = `SELECT id, width, height, ppi, created_at
FROM resolutions
WHERE id IN (/*SLICE:ids*/?)
ORDER BY id`

func (q *Queries) ListResolutionsByIDs(ctx context.Context, ids []int64) ([]Resolution, error) {
	query := listResolutionsByIDs
	var queryParams []any
	if len(ids) > 0 {
		for _, v := range ids {
			queryParams = append(queryParams, v)
		}
		query = strings.Replace(query, "/*SLICE:ids*/?", strings.Repeat(",?", len(ids))[1:], 1)
	} else {
		query = strings.Replace(query, "/*SLICE:ids*/?", "NULL", 1)
	}
	rows, err := q.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resolution
	for rows.Next() {
		var i Resolution
		if err := rows.Scan(
			&i.ID,
			&i.Width,
			&i.Height,
			&i.Ppi,
			&i.CreatedAt,
		); err != nil {
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

const countResolutions = `SELECT COUNT(*) FROM resolutions`

func (q *Queries) CountResolutions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countResolutions)
	var count int64
	err := row.Scan(&count)
	return count, err
}
