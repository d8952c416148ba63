package sqldb

import "context"

const deleteAllMediaResolutions = `DELETE FROM media_resolutions`

func (q *Queries) DeleteAllMediaResolutions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllMediaResolutions)
	return err
}

const deleteAllMedias = `DELETE FROM medias`

func (q *Queries) DeleteAllMedias(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllMedias)
	return err
}

const deleteAllResolutions = `DELETE FROM resolutions`

func (q *Queries) DeleteAllResolutions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllResolutions)
	return err
}
