// Package container wires the service together with samber/do.
// Each *Package function registers lazy providers for one concern.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/migrations"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

const consumerGroupName = "shortlink-consumer"

// RedisConn owns the redis client so the injector can close it.
type RedisConn struct {
	*redis.Client
}

func (r *RedisConn) Shutdown() error {
	return r.Close()
}

// PostgresConn owns the connection pool so the injector can close it.
type PostgresConn struct {
	*pgxpool.Pool
}

func (p *PostgresConn) Shutdown() error {
	p.Close()

	return nil
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides *RedisConn.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConn, error) {
		opts := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})

		return &RedisConn{Client: client}, nil
	})
}

// PostgresPackage provides *PostgresConn, migrated when Options.Migrate is set.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresConn, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if opts.Migrate {
			if err := migrations.Up(pool); err != nil {
				pool.Close()

				return nil, fmt.Errorf("migrate: %w", err)
			}

			logger.Info("migrations applied")
		}

		return &PostgresConn{Pool: pool}, nil
	})
}

// StorePackage provides the shortener.Store selected by Options.Store and,
// for postgres with a cache TTL, the *store.RedisCacheStore in front of it.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.RedisCacheStore, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.CacheEnabled() {
			return nil, errors.New("redis cache requires the postgres store and a positive cache ttl")
		}

		pg := do.MustInvoke[*PostgresConn](i)
		rc := do.MustInvoke[*RedisConn](i)

		return store.NewRedisCacheStore(
			store.NewPostgresStore(pg.Pool),
			rc.Client,
			time.Duration(opts.CacheTTL)*time.Second,
		), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case "memory":
			return store.NewMemoryStore(), nil
		case "redis":
			return store.NewRedisStore(do.MustInvoke[*RedisConn](i).Client), nil
		case "postgres":
			if opts.CacheEnabled() {
				return do.Invoke[*store.RedisCacheStore](i)
			}

			return store.NewPostgresStore(do.MustInvoke[*PostgresConn](i).Pool), nil
		default:
			return nil, fmt.Errorf("unknown store %q", opts.Store)
		}
	})
}

// ShortenerPackage provides *shortener.Config and *shortener.Shortener.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Config, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewConfig(
			shortener.WithDomain(opts.Domain),
			shortener.WithAlphabet(opts.Alphabet),
			shortener.WithCodeLength(opts.CodeLength),
			shortener.WithMaxAttempts(opts.MaxAttempts),
			shortener.WithSchemes(strings.Split(opts.Schemes, ",")...),
		)
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Shortener, error) {
		cfg, err := do.Invoke[*shortener.Config](i)
		if err != nil {
			return nil, err
		}

		s, err := do.Invoke[shortener.Store](i)
		if err != nil {
			return nil, err
		}

		return shortener.NewShortener(s, cfg, do.MustInvoke[*zap.Logger](i)), nil
	})
}

// PublisherGroupPackage provides the event transport and *messaging.PublisherGroup.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{}, messaging.NewZapLogger(logger)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.InProcessEvents() {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: do.MustInvoke[*RedisConn](i).Client,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("redisstream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides *messaging.ConsumerGroup with the mapping consumer.
// The consumer warms the read cache when it is enabled and only logs otherwise.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := newSubscriber(i, opts, logger)
		if err != nil {
			return nil, err
		}

		handler := events.LogMapping(logger)

		if opts.CacheEnabled() {
			cache, err := do.Invoke[*store.RedisCacheStore](i)
			if err != nil {
				return nil, err
			}

			handler = events.WarmCache(cache, logger)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[events.MappingCreatedEvent](subscriber, events.TopicMappingCreated, handler, logger))

		return group, nil
	})
}

func newSubscriber(i *do.Injector, opts *Options, logger *zap.Logger) (message.Subscriber, error) {
	if opts.InProcessEvents() {
		return do.MustInvoke[*gochannel.GoChannel](i), nil
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        do.MustInvoke[*RedisConn](i).Client,
		ConsumerGroup: consumerGroupName,
	}, messaging.NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("redisstream subscriber: %w", err)
	}

	return subscriber, nil
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		s, err := do.Invoke[*shortener.Shortener](i)
		if err != nil {
			return nil, err
		}

		publishers := do.MustInvoke[*messaging.PublisherGroup](i)

		newID, err := nanoid.Standard(21)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(newID), middleware.AccessLog(logger))

		urlHandler := handlers.NewURLHandler(
			s,
			opts.DefaultScheme,
			messaging.NewPublishFunc[events.MappingCreatedEvent](publishers.Publisher(), events.TopicMappingCreated),
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts), logger))

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := make(map[string]health.Checker)

	if opts.Store == "redis" || opts.CacheEnabled() || !opts.InProcessEvents() {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisConn](i).Client)
	}

	if opts.Store == "postgres" {
		checkers["postgres"] = health.NewPostgresChecker(do.MustInvoke[*PostgresConn](i).Pool)
	}

	return checkers
}
