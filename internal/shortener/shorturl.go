package shortener

import "net/url"

// Code represents a short URL code.
type Code string

// ShortURL represents an issued short URL and the mapping it was persisted with.
type ShortURL struct {
	Code    Code
	URL     string // <scheme>://<domain>/<code>, also the store key
	LongURL string // canonical absolute text of the original URL
	Salt    int    // 0 unless a collision forced a salted candidate
	Created bool   // false when the store already held this mapping
}

// Parse returns the short URL as a *url.URL.
func (s *ShortURL) Parse() (*url.URL, error) {
	return url.Parse(s.URL)
}

func (s *ShortURL) String() string {
	return s.URL
}
