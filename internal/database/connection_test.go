package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/choplin/medialedger/internal/config"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("MEDIALEDGER_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := filepath.Join(config.GetDataDir(), "medialedger.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	var version int
	var dirty bool
	if err := ctx.DB.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatalf("failed to read schema_migrations: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("expected clean schema version 1, got %d dirty=%v", version, dirty)
	}

	tables := []string{"resolutions", "medias", "media_resolutions"}
	for _, table := range tables {
		if !tableExists(t, ctx.DB, table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestCreateDatabaseIsIdempotent(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "ledger.db")

	first, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("first CreateDatabase error: %v", err)
	}
	insertMedia(t, first.DB, 1, 1)
	if err := CloseDatabase(first); err != nil {
		t.Fatalf("CloseDatabase error: %v", err)
	}

	second, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
	defer func() {
		_ = CloseDatabase(second)
	}()
	assertCount(t, second.DB, "medias", 1)
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	resolutionID := insertResolution(t, ctx.DB, 1920, 1080, 96)
	mediaID := insertMedia(t, ctx.DB, 42, 1)
	insertLink(t, ctx.DB, mediaID, resolutionID)

	assertCount(t, ctx.DB, "resolutions", 1)
	assertCount(t, ctx.DB, "medias", 1)
	assertCount(t, ctx.DB, "media_resolutions", 1)

	if err := ClearDatabase(ctx); err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}

	assertCount(t, ctx.DB, "resolutions", 0)
	assertCount(t, ctx.DB, "medias", 0)
	assertCount(t, ctx.DB, "media_resolutions", 0)
}

func TestVersionUniquenessIsEnforced(t *testing.T) {
	ctx := setupTestDB(t)

	insertMedia(t, ctx.DB, 7, 1)
	_, err := ctx.DB.Exec(`INSERT INTO medias(mdm_id, version, name, owner, state, address, region, sub_region, locality)
		VALUES(7, 1, 'dup', 'o', 'operating', 'a', 'r', 's', 'l')`)
	if err == nil {
		t.Fatalf("expected duplicate (mdm_id, version) to fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func insertResolution(t *testing.T, db *sql.DB, width, height, ppi int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO resolutions(width, height, ppi) VALUES(?, ?, ?)`, width, height, ppi)
	if err != nil {
		t.Fatalf("insertResolution failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertResolution LastInsertId failed: %v", err)
	}
	return id
}

func insertMedia(t *testing.T, db *sql.DB, mdmID, version int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO medias(mdm_id, version, name, owner, state, address, region, sub_region, locality)
		VALUES(?, ?, 'lobby', 'acme', 'operating', '1 Main St', 'Seoul', 'Gangnam', 'Yeoksam')`, mdmID, version)
	if err != nil {
		t.Fatalf("insertMedia failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertMedia LastInsertId failed: %v", err)
	}
	return id
}

func insertLink(t *testing.T, db *sql.DB, mediaID, resolutionID int64) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO media_resolutions(media_id, resolution_id) VALUES(?, ?)`, mediaID, resolutionID); err != nil {
		t.Fatalf("insertLink failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
