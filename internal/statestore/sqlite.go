package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"soulbound/pkg/platform/sentinel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS state_blobs (
	key     TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	data    BLOB NOT NULL
)`

// SQLiteBlob stores blobs in a local SQLite file.
type SQLiteBlob struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBlob, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteBlob{db: db}, nil
}

func (b *SQLiteBlob) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBlob) Load(ctx context.Context, key string) ([]byte, uint64, error) {
	var (
		data    []byte
		version int64
	)
	err := b.db.QueryRowContext(ctx, `SELECT data, version FROM state_blobs WHERE key = ?`, key).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select state blob: %w", err)
	}
	return data, uint64(version), nil
}

func (b *SQLiteBlob) CompareAndSwap(ctx context.Context, key string, version uint64, data []byte) (uint64, error) {
	next := int64(version) + 1
	var (
		res sql.Result
		err error
	)
	if version == 0 {
		res, err = b.db.ExecContext(ctx,
			`INSERT INTO state_blobs (key, version, data) VALUES (?, ?, ?) ON CONFLICT (key) DO NOTHING`,
			key, next, data)
	} else {
		res, err = b.db.ExecContext(ctx,
			`UPDATE state_blobs SET version = ?, data = ? WHERE key = ? AND version = ?`,
			next, data, key, int64(version))
	}
	if err != nil {
		return 0, fmt.Errorf("write state blob: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return 0, sentinel.ErrConflict
	}
	return uint64(next), nil
}
