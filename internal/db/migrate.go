package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"qna/pkg/errs"
)

// advisoryLockKey serializes migration runs across processes. The lock is
// session-scoped: it is released explicitly at the end of the run, or by the
// server when the holding connection dies.
const advisoryLockKey int64 = 0x716e615f6d696772

// Migration is one versioned schema step. Version is the filename prefix
// (e.g. "0001_create_questions"); DownSQL is empty when no down file exists.
type Migration struct {
	Version string
	UpSQL   string
	DownSQL string
}

// Status pairs a version with its applied state.
type Status struct {
	Version string
	Applied bool
}

// Load collects migrations from dir inside fsys. Files are named
// <version>.up.sql and optionally <version>.down.sql; versions order
// lexicographically, so prefixes are zero-padded.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		var version string
		var down bool
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version = strings.TrimSuffix(name, ".up.sql")
		case strings.HasSuffix(name, ".down.sql"):
			version = strings.TrimSuffix(name, ".down.sql")
			down = true
		default:
			continue
		}

		b, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if down {
			m.DownSQL = string(b)
		} else {
			m.UpSQL = string(b)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %s has a down file but no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Up applies all pending migrations in ascending version order, each inside
// its own transaction, recording success before moving on. The first
// failure aborts the run: the schema stays at the last committed version
// and the error names the version that failed. Returns the versions applied
// by this run. Running Up again with no new migrations is a no-op.
func Up(ctx context.Context, store Store, migrations []Migration) ([]string, error) {
	unlock, err := lock(ctx, store)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := bootstrap(ctx, store); err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range migrations {
		done, err := applied(ctx, store, m.Version)
		if err != nil {
			return ran, err
		}
		if done {
			continue
		}

		if err := applyOne(ctx, store, m); err != nil {
			return ran, err
		}
		ran = append(ran, m.Version)
	}

	return ran, nil
}

// Down reverses exactly one version, the highest applied, using its down
// migration. Returns the reverted version, or "" when nothing is applied.
func Down(ctx context.Context, store Store, migrations []Migration) (string, error) {
	unlock, err := lock(ctx, store)
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := bootstrap(ctx, store); err != nil {
		return "", err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		done, err := applied(ctx, store, m.Version)
		if err != nil {
			return "", err
		}
		if !done {
			continue
		}
		if m.DownSQL == "" {
			return "", &errs.MigrationError{Version: m.Version, Err: fmt.Errorf("no down migration")}
		}
		if err := revertOne(ctx, store, m); err != nil {
			return "", err
		}
		return m.Version, nil
	}

	return "", nil
}

// List reports every known version with its applied state, in order.
func List(ctx context.Context, store Store, migrations []Migration) ([]Status, error) {
	if err := bootstrap(ctx, store); err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(migrations))
	for _, m := range migrations {
		done, err := applied(ctx, store, m.Version)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, Status{Version: m.Version, Applied: done})
	}

	return statuses, nil
}

func lock(ctx context.Context, store Store) (func(), error) {
	if _, err := store.Exec(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockKey); err != nil {
		return nil, &errs.MigrationError{Err: fmt.Errorf("acquire advisory lock: %w", err)}
	}
	return func() {
		// best effort; the lock dies with the session anyway
		_, _ = store.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	}, nil
}

// bootstrap creates the bookkeeping table inside its own transaction.
func bootstrap(ctx context.Context, store Store) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return &errs.MigrationError{Err: fmt.Errorf("begin bootstrap: %w", err)}
	}
	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT now()
	)`); err != nil {
		_ = tx.Rollback(ctx)
		return &errs.MigrationError{Err: fmt.Errorf("ensure schema_migrations: %w", err)}
	}
	if err := tx.Commit(ctx); err != nil {
		return &errs.MigrationError{Err: fmt.Errorf("commit bootstrap: %w", err)}
	}

	return nil
}

func applied(ctx context.Context, store Store, version string) (bool, error) {
	var count int
	row := store.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = $1`, version)
	if err := row.Scan(&count); err != nil {
		return false, &errs.MigrationError{Version: version, Err: fmt.Errorf("check applied: %w", err)}
	}

	return count > 0, nil
}

func applyOne(ctx context.Context, store Store, m Migration) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return &errs.MigrationError{Version: m.Version, Err: err}
	}
	if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
		_ = tx.Rollback(ctx)
		return &errs.MigrationError{Version: m.Version, Err: err}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		_ = tx.Rollback(ctx)
		return &errs.MigrationError{Version: m.Version, Err: fmt.Errorf("record version: %w", err)}
	}
	if err := tx.Commit(ctx); err != nil {
		return &errs.MigrationError{Version: m.Version, Err: fmt.Errorf("commit: %w", err)}
	}

	return nil
}

func revertOne(ctx context.Context, store Store, m Migration) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return &errs.MigrationError{Version: m.Version, Err: err}
	}
	if _, err := tx.Exec(ctx, m.DownSQL); err != nil {
		_ = tx.Rollback(ctx)
		return &errs.MigrationError{Version: m.Version, Err: err}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.Version); err != nil {
		_ = tx.Rollback(ctx)
		return &errs.MigrationError{Version: m.Version, Err: fmt.Errorf("delete version record: %w", err)}
	}
	if err := tx.Commit(ctx); err != nil {
		return &errs.MigrationError{Version: m.Version, Err: fmt.Errorf("commit: %w", err)}
	}

	return nil
}
