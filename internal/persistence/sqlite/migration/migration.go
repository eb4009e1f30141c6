// Package migration applies embedded SQL schema migrations in version order.
//
// Migration files are named "NNN_description.sql". Each file runs inside its
// own transaction and is recorded in the schema_migrations table; files that
// were already applied are skipped on subsequent startups.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Migration represents one schema migration with its metadata and SQL content.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

var fileNamePattern = regexp.MustCompile(`^(\d{3})_([a-z0-9_]+)\.sql$`)

// LoadFromFS scans a filesystem for migration files and returns them sorted
// by version. File names that do not follow the naming convention are an
// error rather than being skipped: a typo must fail loudly at startup.
func LoadFromFS(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to read directory %q: %w", dir, err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := fileNamePattern.FindStringSubmatch(name)
		if match == nil {
			return nil, fmt.Errorf("migration: file %q does not match NNN_description.sql", name)
		}
		version := match[1]
		if existing, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration: version %s used by both %q and %q", version, existing, name)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("migration: failed to read %q: %w", name, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("migration: file %q is empty", name)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(match[2], "_", " "),
			SQL:         string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Runner applies migrations against a database handle.
type Runner struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunner constructs a Runner. When now is nil, time.Now is used.
func NewRunner(db *sql.DB, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{db: db, now: now}
}

// Run applies all pending migrations in version order.
func (r *Runner) Run(ctx context.Context, migrations []Migration) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("migration: runner not configured")
	}

	if err := r.initVersionTable(ctx); err != nil {
		return err
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, done := applied[m.Version]; done {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("migration: version %s (%s) failed: %w", m.Version, m.Description, err)
		}
	}

	return nil
}

// AppliedVersions returns the sorted list of migration versions already applied.
func (r *Runner) AppliedVersions(ctx context.Context) ([]string, error) {
	if err := r.initVersionTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(applied))
	for version := range applied {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions, nil
}

func (r *Runner) initVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migration: failed to create version table: %w", err)
	}
	return nil
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to list applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("migration: failed to scan version: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, r.now().UTC().Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
