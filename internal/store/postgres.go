package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.AtomicStore
// over the url_mappings table created by the migrations package.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT long_url
		FROM url_mappings
		WHERE short_url = $1
	`

	var longURL string

	err := p.pool.QueryRow(ctx, query, key).Scan(&longURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", err
	}

	return longURL, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO url_mappings (short_url, long_url)
		VALUES ($1, $2)
		ON CONFLICT (short_url) DO UPDATE SET long_url = EXCLUDED.long_url
	`

	_, err := p.pool.Exec(ctx, query, key, value)

	return err
}

// SetIfAbsent inserts the mapping unless the key exists and returns the
// long url the row holds afterwards.
func (p *PostgresStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	query := `
		INSERT INTO url_mappings (short_url, long_url)
		VALUES ($1, $2)
		ON CONFLICT (short_url) DO NOTHING
		RETURNING long_url
	`

	var longURL string

	err := p.pool.QueryRow(ctx, query, key, value).Scan(&longURL)
	if err == nil {
		return longURL, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// conflict: someone else holds the key
	return p.Get(ctx, key)
}

var _ shortener.AtomicStore = (*PostgresStore)(nil)
