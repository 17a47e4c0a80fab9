package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the DDL below changes shape in a way that
// isn't backward compatible. On mismatch the caller rebuilds the catalog
// from scratch rather than attempting a migration, per the data model's
// "On schema-version mismatch the catalog is rebuilt from scratch" rule.
const schemaVersion = 1

const ddl = `
CREATE TABLE IF NOT EXISTS schema_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS detail (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	path           TEXT,
	size           INTEGER NOT NULL DEFAULT 0,
	modified_at    INTEGER NOT NULL DEFAULT 0,
	title          TEXT NOT NULL DEFAULT '',
	creator        TEXT NOT NULL DEFAULT '',
	artist         TEXT NOT NULL DEFAULT '',
	album          TEXT NOT NULL DEFAULT '',
	genre          TEXT NOT NULL DEFAULT '',
	comment        TEXT NOT NULL DEFAULT '',
	date           TEXT NOT NULL DEFAULT '',
	duration_ms    INTEGER NOT NULL DEFAULT 0,
	channels       INTEGER NOT NULL DEFAULT 0,
	sample_rate_hz INTEGER NOT NULL DEFAULT 0,
	bitrate_bps    INTEGER NOT NULL DEFAULT 0,
	resolution     TEXT NOT NULL DEFAULT '',
	mime           TEXT NOT NULL DEFAULT '',
	dlna_profile   TEXT,
	media_kind     INTEGER NOT NULL DEFAULT 0,
	caption_path   TEXT
);

CREATE TABLE IF NOT EXISTS object (
	object_id  TEXT PRIMARY KEY,
	parent_id  TEXT NOT NULL,
	ref_id     TEXT,
	class      TEXT NOT NULL,
	name       TEXT NOT NULL,
	detail_id  INTEGER REFERENCES detail(id)
);

CREATE INDEX IF NOT EXISTS idx_object_parent_id ON object(parent_id);
CREATE INDEX IF NOT EXISTS idx_object_detail_id ON object(detail_id);
CREATE INDEX IF NOT EXISTS idx_detail_media_kind ON detail(media_kind);
`

// Open opens (creating if absent) the SQLite database at path, applies the
// schema, and rebuilds it from scratch if the stored schema_version doesn't
// match schemaVersion. Callers get a *Store ready for use.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: serialize writers ourselves, avoid SQLITE_BUSY churn

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: enable foreign keys: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return newStore(db), nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("catalog: create schema_meta: %w", err)
	}

	var stored string
	err := db.QueryRowContext(ctx, `SELECT value FROM schema_meta WHERE key = 'version'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		return applySchema(ctx, db)
	case err != nil:
		return fmt.Errorf("catalog: read schema version: %w", err)
	case stored != fmt.Sprint(schemaVersion):
		if err := dropAll(ctx, db); err != nil {
			return err
		}
		return applySchema(ctx, db)
	default:
		return nil
	}
}

func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("catalog: apply schema: %w", err)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO schema_meta (key, value) VALUES ('version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(schemaVersion))
	if err != nil {
		return fmt.Errorf("catalog: write schema version: %w", err)
	}
	return nil
}

func dropAll(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS object`,
		`DROP TABLE IF EXISTS detail`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("catalog: %s: %w", stmt, err)
		}
	}
	return nil
}
