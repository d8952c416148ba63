package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/logging"
	"github.com/choplin/medialedger/internal/media"
)

// MediaService keeps the append-only version history of every asset and
// answers current-version lookups over it.
type MediaService struct {
	ctx    *database.Context
	medias *database.MediaRepository
	pool   *ResolutionPool
	now    func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(ctx *database.Context) *MediaService {
	return &MediaService{
		ctx:    ctx,
		medias: database.NewMediaRepository(ctx),
		pool:   NewResolutionPool(ctx),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Pool returns the resolution pool the service links versions against.
func (s *MediaService) Pool() *ResolutionPool {
	return s.pool
}

// history is the full set of versions of one mdm id as seen by a single read.
type history struct {
	latest  int64
	current *database.MediaRecord
}

func (s *MediaService) loadHistory(ctx context.Context, mdmID int64) (history, error) {
	records, err := s.medias.ListByMdmID(ctx, mdmID)
	if err != nil {
		return history{}, err
	}

	var h history
	for _, rec := range records {
		if rec.Version > h.latest {
			h.latest = rec.Version
		}
	}

	var active []database.MediaRecord
	for _, rec := range records {
		if rec.Version == h.latest && rec.IsActive() {
			active = append(active, rec)
		}
	}

	switch len(active) {
	case 0:
	case 1:
		h.current = &active[0]
	default:
		logging.Error().
			Int64("mdm_id", mdmID).
			Int64("version", h.latest).
			Int("active_rows", len(active)).
			Msg("multiple active rows at latest version")
		return history{}, fmt.Errorf("mdm id %d has %d active rows at version %d: %w",
			mdmID, len(active), h.latest, media.ErrDataCorruption)
	}
	return h, nil
}

// Create returns the current version of in.MdmID if one is active, ignoring
// the rest of in. Otherwise it stores in as the next version.
func (s *MediaService) Create(ctx context.Context, in media.CreateInput) (media.Media, error) {
	h, err := s.loadHistory(ctx, in.MdmID)
	if err != nil {
		return media.Media{}, err
	}
	if h.current != nil {
		return s.attach(ctx, *h.current)
	}

	resolutions, err := s.pool.ResolveSpecs(ctx, in.Resolutions)
	if err != nil {
		return media.Media{}, err
	}

	id, err := s.insert(ctx, database.NewMediaRecord{
		MdmID:         in.MdmID,
		Version:       h.latest + 1,
		Attributes:    in.Attributes,
		ResolutionIDs: resolutionIDs(resolutions),
	})
	if err != nil {
		return media.Media{}, err
	}

	logging.Debug().
		Int64("id", id).
		Int64("mdm_id", in.MdmID).
		Int64("version", h.latest+1).
		Int("resolutions", len(resolutions)).
		Msg("created media version")

	return s.readBack(ctx, id)
}

// FindAll returns the current version of every asset whose latest version
// is not deleted, ordered by mdm id.
func (s *MediaService) FindAll(ctx context.Context) ([]media.Media, error) {
	records, err := s.medias.ListCurrent(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]media.Media, 0, len(records))
	for _, rec := range records {
		m, err := s.attach(ctx, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// FindOne returns the non-deleted version row with the given row id.
func (s *MediaService) FindOne(ctx context.Context, id int64) (media.Media, error) {
	rec, err := s.medias.FindActiveByID(ctx, id)
	if err != nil {
		return media.Media{}, err
	}
	if rec == nil {
		return media.Media{}, fmt.Errorf("media %d: %w", id, media.ErrNotFound)
	}
	return s.attach(ctx, *rec)
}

// FindCurrent returns the active current version of mdmID.
func (s *MediaService) FindCurrent(ctx context.Context, mdmID int64) (media.Media, error) {
	h, err := s.loadHistory(ctx, mdmID)
	if err != nil {
		return media.Media{}, err
	}
	if h.current == nil {
		return media.Media{}, fmt.Errorf("mdm id %d has no current version: %w", mdmID, media.ErrNotFound)
	}
	return s.attach(ctx, *h.current)
}

// History returns every version of mdmID, deleted ones included, ascending
// by version.
func (s *MediaService) History(ctx context.Context, mdmID int64) ([]media.Media, error) {
	records, err := s.medias.ListByMdmID(ctx, mdmID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("mdm id %d has no history: %w", mdmID, media.ErrNotFound)
	}

	result := make([]media.Media, 0, len(records))
	for _, rec := range records {
		m, err := s.attach(ctx, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// Update stores a new version of in.MdmID derived from its current version
// and returns the row it wrote. Every field of in overrides the current value
// when set and inherits it otherwise, resolutions included.
func (s *MediaService) Update(ctx context.Context, in media.UpdateInput) (media.Media, error) {
	if in.MdmID == nil {
		return media.Media{}, fmt.Errorf("update requires mdmId: %w", media.ErrInvalid)
	}
	mdmID := *in.MdmID

	h, err := s.loadHistory(ctx, mdmID)
	if err != nil {
		return media.Media{}, err
	}
	if h.current == nil {
		return media.Media{}, fmt.Errorf("mdm id %d has no current version: %w", mdmID, media.ErrNotFound)
	}

	var links []int64
	if in.Resolutions != nil {
		resolutions, err := s.pool.ResolveSpecs(ctx, in.Resolutions)
		if err != nil {
			return media.Media{}, err
		}
		links = resolutionIDs(resolutions)
	} else {
		links = append([]int64(nil), h.current.ResolutionIDs...)
	}

	id, err := s.insert(ctx, database.NewMediaRecord{
		MdmID:         mdmID,
		Version:       h.latest + 1,
		Attributes:    in.Merge(h.current.Attributes),
		ResolutionIDs: links,
	})
	if err != nil {
		return media.Media{}, err
	}

	logging.Debug().
		Int64("id", id).
		Int64("mdm_id", mdmID).
		Int64("version", h.latest+1).
		Int64("previous_id", h.current.ID).
		Msg("updated media")

	return s.readBack(ctx, id)
}

// Remove soft-deletes the version row with the given row id. It does not
// create a new version.
func (s *MediaService) Remove(ctx context.Context, id int64) error {
	deleted, err := s.medias.SoftDelete(ctx, id, s.now())
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("media %d: %w", id, media.ErrNotFound)
	}

	logging.Debug().Int64("id", id).Msg("removed media")
	return nil
}

func (s *MediaService) insert(ctx context.Context, rec database.NewMediaRecord) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(repo *database.MediaRepository) error {
		var err error
		id, err = repo.Insert(ctx, rec)
		return err
	})
	return id, err
}

// readBack loads a freshly inserted row through the same path as every other
// read, so resolutions come back in stored order.
func (s *MediaService) readBack(ctx context.Context, id int64) (media.Media, error) {
	rec, err := s.medias.FindByID(ctx, id)
	if err != nil {
		return media.Media{}, err
	}
	if rec == nil {
		return media.Media{}, fmt.Errorf("media %d vanished after insert: %w", id, media.ErrNotFound)
	}
	return s.attach(ctx, *rec)
}

func (s *MediaService) attach(ctx context.Context, rec database.MediaRecord) (media.Media, error) {
	resolutions, err := s.pool.ResolveMany(ctx, rec.ResolutionIDs)
	if err != nil {
		if errors.Is(err, media.ErrDataCorruption) {
			logging.Error().Err(err).
				Int64("id", rec.ID).
				Int64("mdm_id", rec.MdmID).
				Msg("media links to missing resolutions")
		}
		return media.Media{}, fmt.Errorf("media %d: %w", rec.ID, err)
	}
	return rec.ToMedia(resolutions), nil
}

func (s *MediaService) withTx(ctx context.Context, fn func(*database.MediaRepository) error) error {
	if s.ctx == nil || s.ctx.DB == nil {
		return fmt.Errorf("media service: missing database context")
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(s.medias.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}
