package shortener

import (
	"errors"
	"fmt"
)

// Kind classifies shortener failures. Callers branch on the kind, not on the message.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindResolutionExhausted
	KindInvalidStoredData
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindResolutionExhausted:
		return "resolution exhausted"
	case KindInvalidStoredData:
		return "invalid stored data"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is. Any *Error of the same kind matches.
var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrResolutionExhausted = &Error{Kind: KindResolutionExhausted}
	ErrInvalidStoredData   = &Error{Kind: KindInvalidStoredData}
)

// ErrInvalidConfig is returned by NewConfig for unusable policy values.
var ErrInvalidConfig = errors.New("invalid shortener config")

// Error is the error type returned by Shortener operations.
type Error struct {
	Kind     Kind
	Reason   string
	ShortURL string // queried identifier, set for NotFound and InvalidStoredData
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.ShortURL != "" {
		msg = fmt.Sprintf("%s (short url %q)", msg, e.ShortURL)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

func invalidArgument(reason string) *Error {
	return &Error{Kind: KindInvalidArgument, Reason: reason}
}

func notFound(shortURL string) *Error {
	return &Error{Kind: KindNotFound, ShortURL: shortURL}
}
