package history

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens the history database at dbPath and brings its schema up to date.
// The schema version is tracked in SQLite's user_version.
func Open(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make history dir: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// Appends come from short-lived workers; one connection serializes them.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(dbPath string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	return "file:" + dbPath + "?" + params.Encode()
}

// migrate runs every embedded script numbered above the stored version, each
// in its own transaction together with the version bump.
func migrate(ctx context.Context, db *sqlx.DB) error {
	scripts, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list history migrations: %w", err)
	}

	var version int
	if err := db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read history schema version: %w", err)
	}

	// fs.Glob returns names sorted, so index+1 is the script's version.
	for i := version; i < len(scripts); i++ {
		body, err := migrations.ReadFile(scripts[i])
		if err != nil {
			return fmt.Errorf("read %s: %w", scripts[i], err)
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin history migration: %w", err)
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", scripts[i], err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bump history schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", scripts[i], err)
		}
	}
	return nil
}
