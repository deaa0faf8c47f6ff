//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/migrations"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupPostgres starts PostgreSQL in a container, applies migrations and returns a pool.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shortener"),
		postgres.WithUsername("shortener"),
		postgres.WithPassword("shortener"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Up(pool))
	// second run is a no-op
	require.NoError(t, migrations.Up(pool))

	return pool
}

func TestPostgresStoreIntegration(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t)
	s := store.NewPostgresStore(pool)

	t.Run("set and get", func(t *testing.T) {
		err := s.Set(ctx, "https://eg.org/pgtest01", "https://example.com/")
		require.NoError(t, err)

		got, err := s.Get(ctx, "https://eg.org/pgtest01")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		_ = s.Set(ctx, "https://eg.org/pgtest02", "https://old.com/")

		err := s.Set(ctx, "https://eg.org/pgtest02", "https://new.com/")
		require.NoError(t, err)

		got, _ := s.Get(ctx, "https://eg.org/pgtest02")
		assert.Equal(t, "https://new.com/", got)
	})

	t.Run("set if absent keeps first writer", func(t *testing.T) {
		first, err := s.SetIfAbsent(ctx, "https://eg.org/pgtest03", "https://first.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://first.com/", first)

		second, err := s.SetIfAbsent(ctx, "https://eg.org/pgtest03", "https://second.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://first.com/", second)
	})

	t.Run("get non-existent returns empty", func(t *testing.T) {
		got, err := s.Get(ctx, "https://eg.org/pgnonexistent")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("round trip through shortener", func(t *testing.T) {
		svc := shortener.NewShortener(s, nil, zap.NewNop())

		short, err := svc.Shorten(ctx, "https://example.com/API/Files")
		require.NoError(t, err)

		long, err := svc.GetLongURL(ctx, short.URL)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/API/Files", long.String())
	})
}
