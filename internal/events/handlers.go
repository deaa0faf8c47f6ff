package events

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Warmer stores a mapping in a read cache.
type Warmer interface {
	Warm(ctx context.Context, key, value string) error
}

var errIncompleteEvent = errors.New("mapping event without short or long url")

// WarmCache returns a handler that copies created mappings into the read cache.
func WarmCache(cache Warmer, logger *zap.Logger) func(ctx context.Context, event *MappingCreatedEvent) error {
	return func(ctx context.Context, event *MappingCreatedEvent) error {
		if event.ShortURL == "" || event.LongURL == "" {
			return errIncompleteEvent
		}

		if err := cache.Warm(ctx, event.ShortURL, event.LongURL); err != nil {
			return err
		}

		logger.Debug("cache warmed",
			zap.String("shortUrl", event.ShortURL),
			zap.Int("salt", event.Salt),
		)

		return nil
	}
}

// LogMapping returns a handler that only logs created mappings.
// It is used when no read cache is configured.
func LogMapping(logger *zap.Logger) func(ctx context.Context, event *MappingCreatedEvent) error {
	return func(_ context.Context, event *MappingCreatedEvent) error {
		logger.Info("mapping created",
			zap.String("shortUrl", event.ShortURL),
			zap.String("longUrl", event.LongURL),
			zap.Int("salt", event.Salt),
			zap.Time("createdAt", event.CreatedAt),
		)

		return nil
	}
}
