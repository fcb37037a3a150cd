package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soulbound/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS state_blobs (
	key     TEXT PRIMARY KEY,
	version BIGINT NOT NULL,
	data    BYTEA NOT NULL
)`

// PostgresBlob stores blobs in a single table keyed by name.
type PostgresBlob struct {
	pool *pgxpool.Pool
}

func NewPostgresBlob(pool *pgxpool.Pool) *PostgresBlob {
	return &PostgresBlob{pool: pool}
}

func (b *PostgresBlob) Migrate(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate state_blobs: %w", err)
	}
	return nil
}

func (b *PostgresBlob) Load(ctx context.Context, key string) ([]byte, uint64, error) {
	var (
		data    []byte
		version int64
	)
	err := b.pool.QueryRow(ctx, `SELECT data, version FROM state_blobs WHERE key = $1`, key).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select state blob: %w", err)
	}
	return data, uint64(version), nil
}

func (b *PostgresBlob) CompareAndSwap(ctx context.Context, key string, version uint64, data []byte) (uint64, error) {
	next := int64(version) + 1

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var affected int64
	if version == 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO state_blobs (key, version, data) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING`, key, next, data)
		if err != nil {
			return 0, fmt.Errorf("insert state blob: %w", err)
		}
		affected = tag.RowsAffected()
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE state_blobs SET version = $3, data = $4
			WHERE key = $1 AND version = $2`, key, int64(version), next, data)
		if err != nil {
			return 0, fmt.Errorf("update state blob: %w", err)
		}
		affected = tag.RowsAffected()
	}
	if affected == 0 {
		return 0, sentinel.ErrConflict
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return uint64(next), nil
}
