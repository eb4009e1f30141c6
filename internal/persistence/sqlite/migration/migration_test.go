package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	_ "modernc.org/sqlite"
)

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_add_notes.sql": {Data: []byte("ALTER TABLE things ADD COLUMN note TEXT;")},
		"migrations/001_init.sql":      {Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY);")},
	}

	migrations, err := LoadFromFS(fsys, "migrations")
	if err != nil {
		t.Fatalf("LoadFromFS failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001" || migrations[1].Version != "002" {
		t.Fatalf("expected migrations sorted by version, got %#v", migrations)
	}
	if migrations[1].Description != "add notes" {
		t.Fatalf("expected description derived from file name, got %q", migrations[1].Description)
	}
}

func TestLoadFromFS_RejectsBadNames(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"wrong extension": {
			"migrations/001_init.txt": {Data: []byte("CREATE TABLE t (id TEXT);")},
		},
		"missing version prefix": {
			"migrations/init.sql": {Data: []byte("CREATE TABLE t (id TEXT);")},
		},
		"empty file": {
			"migrations/001_init.sql": {Data: []byte("   \n")},
		},
		"duplicate version": {
			"migrations/001_init.sql":  {Data: []byte("CREATE TABLE a (id TEXT);")},
			"migrations/001_other.sql": {Data: []byte("CREATE TABLE b (id TEXT);")},
		},
	}

	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFS(fsys, "migrations"); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "migration_test.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestRunner_AppliesPendingOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	migrations := []Migration{
		{Version: "001", Description: "init", SQL: "CREATE TABLE things (id TEXT PRIMARY KEY);"},
		{Version: "002", Description: "add notes", SQL: "ALTER TABLE things ADD COLUMN note TEXT;"},
	}

	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	runner := NewRunner(db, func() time.Time { return fixed })

	if err := runner.Run(ctx, migrations); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	versions, err := runner.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions failed: %v", err)
	}
	if len(versions) != 2 || versions[0] != "001" || versions[1] != "002" {
		t.Fatalf("unexpected applied versions: %#v", versions)
	}

	// A second run must skip everything already applied. Re-running the DDL
	// would fail, so success here proves the version table is consulted.
	if err := runner.Run(ctx, migrations); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO things (id, note) VALUES ('t1', 'hello')`); err != nil {
		t.Fatalf("expected migrated schema to accept inserts: %v", err)
	}
}

func TestRunner_RollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	runner := NewRunner(db, nil)

	bad := []Migration{
		{Version: "001", Description: "broken", SQL: "CREATE TABLE nope ("},
	}
	if err := runner.Run(ctx, bad); err == nil {
		t.Fatal("expected broken migration to fail")
	}

	versions, err := runner.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions failed: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions recorded after failure, got %#v", versions)
	}

	// The fixed migration applies cleanly afterwards.
	good := []Migration{
		{Version: "001", Description: "fixed", SQL: "CREATE TABLE yep (id TEXT PRIMARY KEY);"},
	}
	if err := runner.Run(ctx, good); err != nil {
		t.Fatalf("Run failed after fixing migration: %v", err)
	}
}
