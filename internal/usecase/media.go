package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jpillora/backoff"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/filesystem"
	"github.com/choplin/medialedger/internal/logging"
	"github.com/choplin/medialedger/internal/media"
	"github.com/choplin/medialedger/internal/services"
)

// Media is the entry point the CLI, HTTP and MCP surfaces call. It retries
// version conflicts that the store itself only reports.
type Media struct {
	service *services.MediaService
	retry   config.RetryConfig
}

func NewMedia(dbCtx *database.Context, retry config.RetryConfig) *Media {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Media{
		service: services.NewMediaService(dbCtx),
		retry:   retry,
	}
}

// Create runs get-or-create for in.MdmID. After a lost race the retry
// observes the winner's version and returns it.
func (u *Media) Create(ctx context.Context, in media.CreateInput) (media.Media, error) {
	var result media.Media
	err := u.withRetry(ctx, "create", in.MdmID, func() error {
		var err error
		result, err = u.service.Create(ctx, in)
		return err
	})
	return result, err
}

// Update stores the next version of in.MdmID and returns the row written by
// this call, even when a concurrent update has already superseded it.
func (u *Media) Update(ctx context.Context, in media.UpdateInput) (media.Media, error) {
	var mdmID int64
	if in.MdmID != nil {
		mdmID = *in.MdmID
	}

	var result media.Media
	err := u.withRetry(ctx, "update", mdmID, func() error {
		var err error
		result, err = u.service.Update(ctx, in)
		return err
	})
	return result, err
}

func (u *Media) List(ctx context.Context) ([]media.Media, error) {
	return u.service.FindAll(ctx)
}

func (u *Media) Get(ctx context.Context, id int64) (media.Media, error) {
	return u.service.FindOne(ctx, id)
}

func (u *Media) History(ctx context.Context, mdmID int64) ([]media.Media, error) {
	return u.service.History(ctx, mdmID)
}

func (u *Media) Remove(ctx context.Context, id int64) error {
	return u.service.Remove(ctx, id)
}

// RemoveCurrent soft-deletes the current version of mdmID and returns the
// row it removed.
func (u *Media) RemoveCurrent(ctx context.Context, mdmID int64) (media.Media, error) {
	current, err := u.service.FindCurrent(ctx, mdmID)
	if err != nil {
		return media.Media{}, err
	}
	if err := u.service.Remove(ctx, current.ID); err != nil {
		return media.Media{}, err
	}
	return current, nil
}

// CreateFromFile decodes a CreateInput from path ("-" for stdin) and creates it.
func (u *Media) CreateFromFile(ctx context.Context, path string, stdin io.Reader) (media.Media, error) {
	var in media.CreateInput
	if err := filesystem.LoadFile(path, stdin, &in); err != nil {
		return media.Media{}, fmt.Errorf("%w: %v", media.ErrInvalid, err)
	}
	return u.Create(ctx, in)
}

// UpdateFromFile decodes an UpdateInput from path ("-" for stdin) and applies it.
func (u *Media) UpdateFromFile(ctx context.Context, path string, stdin io.Reader) (media.Media, error) {
	var in media.UpdateInput
	if err := filesystem.LoadFile(path, stdin, &in); err != nil {
		return media.Media{}, fmt.Errorf("%w: %v", media.ErrInvalid, err)
	}
	return u.Update(ctx, in)
}

// ExportedFile is one snapshot written by Export.
type ExportedFile struct {
	Version int64  `json:"version"`
	Path    string `json:"path"`
	Hash    string `json:"hash"`
}

// Export writes every version of mdmID to dir as YAML snapshots.
func (u *Media) Export(ctx context.Context, mdmID int64, dir string) ([]ExportedFile, error) {
	versions, err := u.service.History(ctx, mdmID)
	if err != nil {
		return nil, err
	}

	files := make([]ExportedFile, 0, len(versions))
	for _, m := range versions {
		path, hash, err := filesystem.SaveSnapshot(dir, m)
		if err != nil {
			return nil, fmt.Errorf("export version %d of mdm id %d: %w", m.Version, mdmID, err)
		}
		files = append(files, ExportedFile{Version: m.Version, Path: path, Hash: hash})
	}
	return files, nil
}

func (u *Media) withRetry(ctx context.Context, op string, mdmID int64, fn func() error) error {
	boff := backoff.Backoff{
		Min:    u.retry.MinBackoff,
		Max:    u.retry.MaxBackoff,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, media.ErrConflict) || attempt >= u.retry.MaxAttempts {
			return err
		}

		dur := boff.Duration()
		logging.Warn().
			Err(err).
			Str("op", op).
			Int64("mdm_id", mdmID).
			Int("attempt", attempt).
			Dur("backoff", dur).
			Msg("version conflict")

		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
