package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Migration is one schema version: NNN_name.sql and its NNN_name.down.sql.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Plan pairs the up and down files in fsys, ordered by version. Every up
// file needs a down file.
func Plan(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	byVersion := map[string]*Migration{}
	for _, name := range names {
		base, down := strings.CutSuffix(strings.TrimSuffix(name, ".sql"), ".down")
		version, _, ok := strings.Cut(base, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("migration %s: name must look like NNN_name.sql", name)
		}
		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if down {
			m.Down = name
		} else {
			m.Up = name
		}
	}

	plan := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %s: needs both up and down files", m.Version)
		}
		plan = append(plan, *m)
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Version < plan[j].Version })
	return plan, nil
}

const createVersions = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	if _, err := db.Pool.Exec(ctx, createVersions); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// MigrateUp applies every pending migration, each in its own transaction,
// and returns the versions applied.
func (db *DB) MigrateUp(ctx context.Context, fsys fs.FS) ([]string, error) {
	plan, err := Plan(fsys)
	if err != nil {
		return nil, err
	}
	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	var done []string
	for _, m := range plan {
		if applied[m.Version] {
			continue
		}
		err := db.apply(ctx, fsys, m.Up, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
		if err != nil {
			return done, err
		}
		slog.InfoContext(ctx, "migration applied", "version", m.Version, "file", m.Up)
		done = append(done, m.Version)
	}
	return done, nil
}

// MigrateDown reverts the newest steps applied migrations.
func (db *DB) MigrateDown(ctx context.Context, fsys fs.FS, steps int) ([]string, error) {
	plan, err := Plan(fsys)
	if err != nil {
		return nil, err
	}
	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	var done []string
	for i := len(plan) - 1; i >= 0 && len(done) < steps; i-- {
		m := plan[i]
		if !applied[m.Version] {
			continue
		}
		err := db.apply(ctx, fsys, m.Down, `DELETE FROM schema_migrations WHERE version = $1`, m.Version)
		if err != nil {
			return done, err
		}
		slog.InfoContext(ctx, "migration reverted", "version", m.Version, "file", m.Down)
		done = append(done, m.Version)
	}
	return done, nil
}

func (db *DB) apply(ctx context.Context, fsys fs.FS, file, record, version string) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}
	if _, err := tx.Exec(ctx, record, version); err != nil {
		return fmt.Errorf("record %s: %w", version, err)
	}
	return tx.Commit(ctx)
}
