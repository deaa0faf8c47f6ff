package shortener

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	DefaultAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultDomain      = "eg.org"
	DefaultCodeLength  = 8
	DefaultMaxAttempts = 100

	// MaxCodeLength is bounded by the digest size: one digest byte per code character.
	MaxCodeLength = sha256.Size
)

// DefaultSchemes are the schemes accepted when none are configured.
var DefaultSchemes = []string{"http", "https"}

// Config holds the shortening policy. It is immutable once built.
type Config struct {
	alphabet    []rune
	domain      string
	codeLength  int
	maxAttempts int
	schemes     map[string]struct{}
}

// Option customizes a Config under construction.
type Option func(*Config)

// WithAlphabet sets the characters short codes are drawn from, in order.
func WithAlphabet(alphabet string) Option {
	return func(c *Config) {
		c.alphabet = []rune(alphabet)
	}
}

// WithDomain sets the output domain. Trailing slashes are stripped.
func WithDomain(domain string) Option {
	return func(c *Config) {
		c.domain = strings.TrimRight(domain, "/")
	}
}

func WithCodeLength(n int) Option {
	return func(c *Config) {
		c.codeLength = n
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.maxAttempts = n
	}
}

// WithSchemes replaces the accepted scheme set. Names are matched case-insensitively.
func WithSchemes(schemes ...string) Option {
	return func(c *Config) {
		c.schemes = schemeSet(schemes)
	}
}

// NewConfig builds a Config from the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		alphabet:    []rune(DefaultAlphabet),
		domain:      DefaultDomain,
		codeLength:  DefaultCodeLength,
		maxAttempts: DefaultMaxAttempts,
		schemes:     schemeSet(DefaultSchemes),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// DefaultConfig returns the default policy.
func DefaultConfig() *Config {
	c, err := NewConfig()
	if err != nil {
		panic(err)
	}

	return c
}

func (c *Config) validate() error {
	if len(c.alphabet) < 2 {
		return fmt.Errorf("%w: alphabet needs at least 2 characters", ErrInvalidConfig)
	}

	seen := make(map[rune]struct{}, len(c.alphabet))
	for _, r := range c.alphabet {
		if _, dup := seen[r]; dup {
			return fmt.Errorf("%w: duplicate alphabet character %q", ErrInvalidConfig, r)
		}

		seen[r] = struct{}{}
	}

	if c.domain == "" {
		return fmt.Errorf("%w: domain is empty", ErrInvalidConfig)
	}

	if u, err := url.Parse("http://" + c.domain); err != nil || u.Host == "" ||
		u.User != nil || u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return fmt.Errorf("%w: domain %q is not a host", ErrInvalidConfig, c.domain)
	}

	if c.codeLength <= 0 || c.codeLength > MaxCodeLength {
		return fmt.Errorf("%w: code length must be in 1..%d, got %d", ErrInvalidConfig, MaxCodeLength, c.codeLength)
	}

	if c.maxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfig, c.maxAttempts)
	}

	if len(c.schemes) == 0 {
		return fmt.Errorf("%w: no accepted schemes", ErrInvalidConfig)
	}

	return nil
}

func (c *Config) Alphabet() string { return string(c.alphabet) }
func (c *Config) Domain() string   { return c.domain }
func (c *Config) CodeLength() int  { return c.codeLength }
func (c *Config) MaxAttempts() int { return c.maxAttempts }

// Schemes returns the accepted schemes, lower-cased and sorted.
func (c *Config) Schemes() []string {
	out := make([]string, 0, len(c.schemes))
	for s := range c.schemes {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// Accepts reports whether scheme is in the accepted set, ignoring case.
func (c *Config) Accepts(scheme string) bool {
	_, ok := c.schemes[strings.ToLower(scheme)]

	return ok
}

func schemeSet(schemes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(schemes))

	for _, s := range schemes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}

	return set
}
