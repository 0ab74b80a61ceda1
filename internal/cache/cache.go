// Package cache keeps the last successfully fetched request list in a local
// SQLite database, so the list view can paint instantly and keep showing the
// last-known-good rows when a fetch fails.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"repdesk/internal/model"
)

// Cache stores one snapshot of the record set under a state directory.
type Cache struct {
	Dir string
}

func (c Cache) dbPath() string { return filepath.Join(c.Dir, "snapshot.sqlite") }

func (c Cache) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", c.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database is
	// locked" flakiness when a CLI command races the TUI.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forms (
			id  TEXT PRIMARY KEY,
			pos INTEGER NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the snapshot with the given record set.
func (c Cache) Save(ctx context.Context, forms []model.RequestForm) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM forms`); err != nil {
		return err
	}
	for i, f := range forms {
		doc, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO forms(id, pos, doc) VALUES(?, ?, ?)`,
			f.ID.String(), i, string(doc)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta(k, v) VALUES('fetched_at', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the cached snapshot in its original order, with the fetch
// timestamp. A missing or empty cache returns an empty slice and zero time.
func (c Cache) Load(ctx context.Context) ([]model.RequestForm, time.Time, error) {
	if _, err := os.Stat(c.dbPath()); errors.Is(err, os.ErrNotExist) {
		return nil, time.Time{}, nil
	}

	db, err := c.open(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT doc FROM forms ORDER BY pos ASC`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var forms []model.RequestForm
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, time.Time{}, err
		}
		var f model.RequestForm
		if err := json.Unmarshal([]byte(doc), &f); err != nil {
			// A corrupt row invalidates the whole snapshot; better to fetch.
			return nil, time.Time{}, nil
		}
		f.Normalize()
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	var fetchedAt time.Time
	var stamp string
	err = db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k='fetched_at'`).Scan(&stamp)
	if err == nil {
		fetchedAt, _ = time.Parse(time.RFC3339, stamp)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, err
	}

	return forms, fetchedAt, nil
}
