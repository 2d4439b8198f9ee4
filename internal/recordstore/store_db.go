package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgUndefinedTable = "42P01"
)

const createCollectionsTable = `
	CREATE TABLE IF NOT EXISTS collections (
		name       TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresBackend keeps each collection as one JSONB row. The upsert is a
// single statement, so readers never observe a half-written collection.
type PostgresBackend struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	b := NewPostgresBackend(db)
	if err := b.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := b.db.ExecContext(ctx, createCollectionsTable)
		return err
	})
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return b.db.PingContext(ctx)
	})
}

func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return b.db.QueryRowContext(ctx, `
			SELECT data
			FROM collections
			WHERE name = $1
		`, name).Scan(&data)
	})

	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	err := b.upsert(ctx, name, data)
	if !isUndefinedTable(err) {
		return err
	}

	if err := b.Migrate(ctx); err != nil {
		return err
	}
	return b.upsert(ctx, name, data)
}

func (b *PostgresBackend) upsert(ctx context.Context, name string, data []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := b.db.ExecContext(ctx, `
			INSERT INTO collections (name, data, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE
			SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		`, name, string(data))
		return err
	})
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
