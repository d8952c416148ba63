package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/filesystem"
	"github.com/choplin/medialedger/internal/media"
)

var testRetry = config.RetryConfig{
	MaxAttempts: 5,
	MinBackoff:  time.Millisecond,
	MaxBackoff:  5 * time.Millisecond,
}

func newTestMedia(t *testing.T) *Media {
	t.Helper()
	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "medialedger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	return NewMedia(dbCtx, testRetry)
}

func createInput(mdmID int64, name string) media.CreateInput {
	return media.CreateInput{
		MdmID: mdmID,
		Attributes: media.Attributes{
			Name:  name,
			Owner: "north-outdoor",
			State: media.StateInstalling,
		},
		Resolutions: []media.ResolutionSpec{{Width: 1080, Height: 1920, PPI: 72}},
	}
}

func TestWithRetryStopsAfterMaxAttempts(t *testing.T) {
	u := &Media{retry: config.RetryConfig{MaxAttempts: 3, MinBackoff: time.Millisecond, MaxBackoff: time.Millisecond}}

	calls := 0
	err := u.withRetry(context.Background(), "create", 1, func() error {
		calls++
		return fmt.Errorf("insert: %w", media.ErrConflict)
	})
	assert.ErrorIs(t, err, media.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	u := &Media{retry: testRetry}

	calls := 0
	err := u.withRetry(context.Background(), "update", 1, func() error {
		calls++
		return media.ErrNotFound
	})
	assert.ErrorIs(t, err, media.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonoursCancellation(t *testing.T) {
	u := &Media{retry: config.RetryConfig{MaxAttempts: 10, MinBackoff: time.Hour, MaxBackoff: time.Hour}}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := u.withRetry(ctx, "create", 1, func() error {
		calls++
		cancel()
		return media.ErrConflict
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConcurrentCreateConvergesOnOneVersion(t *testing.T) {
	ctx := context.Background()
	u := newTestMedia(t)

	const callers = 6
	results := make([]media.Media, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			m, err := u.Create(ctx, createInput(99, fmt.Sprintf("caller-%d", i)))
			results[i] = m
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, m := range results {
		assert.Equal(t, int64(1), m.Version)
		assert.Equal(t, results[0].ID, m.ID)
		assert.Equal(t, results[0].Name, m.Name)
	}

	history, err := u.History(ctx, 99)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateReturnsNewVersion(t *testing.T) {
	ctx := context.Background()
	u := newTestMedia(t)

	_, err := u.Create(ctx, createInput(1, "lobby"))
	require.NoError(t, err)

	state := media.StateOperating
	mdmID := int64(1)
	updated, err := u.Update(ctx, media.UpdateInput{MdmID: &mdmID, State: &state})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, media.StateOperating, updated.State)
	assert.Equal(t, "lobby", updated.Name)

	_, err = u.Update(ctx, media.UpdateInput{State: &state})
	assert.ErrorIs(t, err, media.ErrInvalid)
}

func TestConcurrentUpdatesReturnTheirOwnVersion(t *testing.T) {
	ctx := context.Background()
	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "medialedger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	u := NewMedia(dbCtx, config.RetryConfig{
		MaxAttempts: 10,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})

	_, err = u.Create(ctx, createInput(50, "gallery"))
	require.NoError(t, err)

	const callers = 4
	results := make([]media.Media, callers)
	names := make([]string, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		names[i] = fmt.Sprintf("gallery-%d", i)
		g.Go(func() error {
			mdmID := int64(50)
			m, err := u.Update(ctx, media.UpdateInput{MdmID: &mdmID, Name: &names[i]})
			results[i] = m
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, callers)
	for i, m := range results {
		assert.Equal(t, names[i], m.Name)
		assert.False(t, seen[m.Version], "version %d returned twice", m.Version)
		seen[m.Version] = true

		stored, err := u.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.Version, stored.Version)
		assert.Equal(t, names[i], stored.Name)
	}

	history, err := u.History(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, history, callers+1)
}

func TestRemoveCurrent(t *testing.T) {
	ctx := context.Background()
	u := newTestMedia(t)

	created, err := u.Create(ctx, createInput(3, "atrium"))
	require.NoError(t, err)

	removed, err := u.RemoveCurrent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = u.Get(ctx, created.ID)
	assert.ErrorIs(t, err, media.ErrNotFound)

	_, err = u.RemoveCurrent(ctx, 3)
	assert.ErrorIs(t, err, media.ErrNotFound)

	all, err := u.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAndUpdateFromFile(t *testing.T) {
	ctx := context.Background()
	u := newTestMedia(t)
	dir := t.TempDir()

	createPath := filepath.Join(dir, "create.yaml")
	require.NoError(t, os.WriteFile(createPath, []byte(`mdmId: 12
name: concourse
owner: east-outdoor
state: operating
resolutions:
  - {width: 1920, height: 1080, ppi: 96}
`), 0o600))

	created, err := u.CreateFromFile(ctx, createPath, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), created.MdmID)
	assert.Equal(t, "concourse", created.Name)
	require.Len(t, created.Resolutions, 1)

	updated, err := u.UpdateFromFile(ctx, "payload.json", strings.NewReader(`{"mdmId": 12, "householdCount": 80}`))
	require.Error(t, err, "a path other than - is read from disk")
	assert.Equal(t, media.Media{}, updated)

	updated, err = u.UpdateFromFile(ctx, "-", strings.NewReader("mdmId: 12\nhouseholdCount: 80\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, int64(80), updated.HouseholdCount)
	assert.Equal(t, created.Resolutions, updated.Resolutions)

	_, err = u.CreateFromFile(ctx, "-", strings.NewReader("mdmId: [not, a, number]\n"))
	assert.ErrorIs(t, err, media.ErrInvalid)
}

func TestExportWritesEveryVersion(t *testing.T) {
	ctx := context.Background()
	u := newTestMedia(t)
	dir := t.TempDir()

	_, err := u.Create(ctx, createInput(20, "plaza"))
	require.NoError(t, err)
	name := "plaza north"
	mdmID := int64(20)
	_, err = u.Update(ctx, media.UpdateInput{MdmID: &mdmID, Name: &name})
	require.NoError(t, err)

	files, err := u.Export(ctx, 20, dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		assert.Equal(t, filesystem.SnapshotPath(dir, 20, f.Version), f.Path)
		ok, err := filesystem.VerifyFile(f.Path, f.Hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = u.Export(ctx, 21, dir)
	assert.ErrorIs(t, err, media.ErrNotFound)
}
