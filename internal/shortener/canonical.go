package shortener

import (
	"net/url"
	"strings"
)

// Canonicalize returns the canonical absolute text of u:
//   - lowercases the scheme and host
//   - removes default ports (80 for http, 443 for https)
//   - uses "/" for an empty path when a host is present
//
// Path, query and fragment are kept as written, so comparisons on the result
// stay case-sensitive where URLs are.
func Canonicalize(u *url.URL) string {
	c := *u

	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)

	if strings.HasSuffix(c.Host, ":80") && c.Scheme == "http" {
		c.Host = strings.TrimSuffix(c.Host, ":80")
	} else if strings.HasSuffix(c.Host, ":443") && c.Scheme == "https" {
		c.Host = strings.TrimSuffix(c.Host, ":443")
	}

	if c.Host != "" && c.Opaque == "" && c.Path == "" {
		c.Path = "/"
		c.RawPath = ""
	}

	return c.String()
}

// parseAbsolute parses raw and requires an absolute URI.
func parseAbsolute(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, false
	}

	return u, true
}
