package shortener

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Shortener maps long URLs to deterministic short URLs and back.
// It holds no mutable state and is safe for concurrent use if the store is.
type Shortener struct {
	cfg    *Config
	store  Store
	logger *zap.Logger
}

// NewShortener creates a shortener over store. A nil cfg uses DefaultConfig,
// a nil logger discards output.
func NewShortener(store Store, cfg *Config, logger *zap.Logger) *Shortener {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Shortener{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Config returns the policy the shortener was built with.
func (s *Shortener) Config() *Config {
	return s.cfg
}

// Shorten returns the short URL for longURL, persisting the mapping.
//
// Attempt 0 hashes the canonical URL text; each collision with a different
// long URL moves on to the next salt. Shortening the same URL again yields the
// same short URL as long as the store was not changed by someone else.
func (s *Shortener) Shorten(ctx context.Context, longURL string) (*ShortURL, error) {
	u, err := s.validateLongURL(longURL)
	if err != nil {
		return nil, err
	}

	canonical := Canonicalize(u)
	scheme := strings.ToLower(u.Scheme)

	for attempt := range s.cfg.maxAttempts {
		code := GenerateCode(s.cfg, SaltedInput(canonical, attempt))
		key, err := s.ShortURLFor(scheme, code)
		if err != nil {
			return nil, err
		}

		existing, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", key, err)
		}

		if existing != "" && existing != canonical {
			s.logCollision(key, attempt)

			continue
		}

		stored, err := s.persist(ctx, key, canonical, existing)
		if err != nil {
			return nil, err
		}

		if !stored {
			s.logCollision(key, attempt)

			continue
		}

		return &ShortURL{
			Code:    code,
			URL:     key,
			LongURL: canonical,
			Salt:    attempt,
			Created: existing == "",
		}, nil
	}

	return nil, &Error{
		Kind:   KindResolutionExhausted,
		Reason: fmt.Sprintf("no free code after %d attempts", s.cfg.maxAttempts),
	}
}

// persist writes key -> canonical. It reports false when an atomic store
// already holds a different long URL under key.
func (s *Shortener) persist(ctx context.Context, key, canonical, existing string) (bool, error) {
	atomic, ok := s.store.(AtomicStore)
	if !ok {
		if err := s.store.Set(ctx, key, canonical); err != nil {
			return false, fmt.Errorf("save %s: %w", key, err)
		}

		return true, nil
	}

	if existing == canonical {
		return true, nil
	}

	actual, err := atomic.SetIfAbsent(ctx, key, canonical)
	if err != nil {
		return false, fmt.Errorf("save %s: %w", key, err)
	}

	return actual == canonical, nil
}

func (s *Shortener) logCollision(key string, attempt int) {
	s.logger.Debug("short url collision",
		zap.String("shortUrl", key),
		zap.Int("attempt", attempt),
	)
}

// GetLongURL resolves a full short URL. The stored scheme is not checked
// against the accepted set, so mappings survive a later policy change.
func (s *Shortener) GetLongURL(ctx context.Context, shortURL string) (*url.URL, error) {
	if strings.TrimSpace(shortURL) == "" {
		return nil, invalidArgument("empty short url")
	}

	u, ok := parseAbsolute(shortURL)
	if !ok {
		return nil, invalidArgument("not absolute")
	}

	return s.lookup(ctx, Canonicalize(u))
}

// GetLongURLByCode resolves a bare code under the given scheme and the configured domain.
func (s *Shortener) GetLongURLByCode(ctx context.Context, scheme string, code Code) (*url.URL, error) {
	if strings.TrimSpace(string(code)) == "" {
		return nil, invalidArgument("empty code")
	}

	if strings.TrimSpace(scheme) == "" {
		return nil, invalidArgument("empty scheme")
	}

	key, err := s.ShortURLFor(scheme, code)
	if err != nil {
		return nil, err
	}

	return s.lookup(ctx, key)
}

// ShortURLFor builds the short URL (and store key) for code under scheme,
// in canonical form so it matches what GetLongURL looks up.
// A scheme that is not RFC 3986 syntax is an InvalidArgument.
func (s *Shortener) ShortURLFor(scheme string, code Code) (string, error) {
	if !validScheme(scheme) {
		return "", invalidArgument("invalid scheme")
	}

	u, err := url.Parse(scheme + "://" + s.cfg.domain + "/" + string(code))
	if err != nil {
		return "", invalidArgument("invalid code")
	}

	return Canonicalize(u), nil
}

// validScheme reports whether scheme matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(scheme string) bool {
	if scheme == "" {
		return false
	}

	for i, r := range scheme {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}

func (s *Shortener) lookup(ctx context.Context, key string) (*url.URL, error) {
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}

	if stored == "" {
		return nil, notFound(key)
	}

	u, ok := parseAbsolute(stored)
	if !ok {
		return nil, &Error{
			Kind:     KindInvalidStoredData,
			Reason:   "stored value is not an absolute url",
			ShortURL: key,
		}
	}

	return u, nil
}

func (s *Shortener) validateLongURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, invalidArgument("empty url")
	}

	u, ok := parseAbsolute(raw)
	if !ok {
		return nil, invalidArgument("not absolute")
	}

	if !s.cfg.Accepts(u.Scheme) {
		return nil, invalidArgument("unsupported scheme")
	}

	if u.Host == "" {
		return nil, invalidArgument("missing host")
	}

	return u, nil
}
