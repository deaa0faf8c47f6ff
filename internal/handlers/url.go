package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// URLShortener is the subset of *shortener.Shortener the HTTP layer needs.
type URLShortener interface {
	Shorten(ctx context.Context, longURL string) (*shortener.ShortURL, error)
	GetLongURL(ctx context.Context, shortURL string) (*url.URL, error)
	GetLongURLByCode(ctx context.Context, scheme string, code shortener.Code) (*url.URL, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener             URLShortener
	defaultScheme         string
	publishMappingCreated messaging.Publish[events.MappingCreatedEvent]
	logger                *zap.Logger
}

// NewURLHandler creates a new URL handler. defaultScheme is used for
// redirects when the request carries no X-Forwarded-Proto header.
func NewURLHandler(
	s URLShortener,
	defaultScheme string,
	publishMappingCreated messaging.Publish[events.MappingCreatedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		shortener:             s,
		defaultScheme:         defaultScheme,
		publishMappingCreated: publishMappingCreated,
		logger:                logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for logging and events.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.shortener.Shorten(ctx, req.Body.URL)
	if err != nil {
		return nil, h.toHTTPError(err, "failed to shorten url")
	}

	resp := &CreateShortURLResponse{}
	resp.Headers.Location = shortURL.URL
	resp.Body.Code = string(shortURL.Code)
	resp.Body.ShortURL = shortURL.URL
	resp.Body.OriginalURL = shortURL.LongURL
	resp.Body.Salt = shortURL.Salt

	if shortURL.Created {
		h.publishCreated(ctx, shortURL)
	}

	return resp, nil
}

func (h *URLHandler) publishCreated(ctx context.Context, shortURL *shortener.ShortURL) {
	meta := RequestMetaFromContext(ctx)
	event := &events.MappingCreatedEvent{
		ShortURL:  shortURL.URL,
		Code:      string(shortURL.Code),
		LongURL:   shortURL.LongURL,
		Salt:      shortURL.Salt,
		CreatedAt: time.Now().UTC(),
		RequestID: meta.RequestID,
	}

	if err := h.publishMappingCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish mapping event",
			zap.String("shortUrl", event.ShortURL),
			zap.String("requestId", meta.RequestID),
			zap.Error(err),
		)
	}
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	scheme := h.defaultScheme
	if proto := forwardedProto(req.Proto); proto != "" {
		scheme = proto
	}

	longURL, err := h.shortener.GetLongURLByCode(ctx, scheme, shortener.Code(req.Code))
	if err != nil {
		return nil, h.toHTTPError(err, "failed to get url")
	}

	resp := &RedirectResponse{
		Status: http.StatusMovedPermanently,
	}
	resp.Headers.Location = longURL.String()

	return resp, nil
}

func (h *URLHandler) ResolveShortURL(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	longURL, err := h.shortener.GetLongURL(ctx, req.ShortURL)
	if err != nil {
		return nil, h.toHTTPError(err, "failed to resolve url")
	}

	resp := &ResolveResponse{}
	resp.Body.ShortURL = req.ShortURL
	resp.Body.LongURL = longURL.String()

	return resp, nil
}

// forwardedProto returns the client-facing scheme from X-Forwarded-Proto.
// Proxy chains append their own scheme, so the first element wins.
func forwardedProto(header string) string {
	first, _, _ := strings.Cut(header, ",")

	return strings.TrimSpace(first)
}

// toHTTPError maps shortener error kinds to HTTP errors. Unexpected errors
// are logged and reported without detail.
func (h *URLHandler) toHTTPError(err error, internalMsg string) error {
	switch shortener.KindOf(err) {
	case shortener.KindInvalidArgument:
		return huma.Error400BadRequest(err.Error())
	case shortener.KindNotFound:
		return huma.Error404NotFound("short url not found")
	case shortener.KindResolutionExhausted:
		h.logger.Warn("collision resolution exhausted", zap.Error(err))

		return huma.Error503ServiceUnavailable("no short code available, try again later")
	case shortener.KindInvalidStoredData:
		h.logger.Error("invalid stored mapping", zap.Error(err))

		return huma.Error500InternalServerError("stored mapping is invalid")
	default:
		h.logger.Error(internalMsg, zap.Error(err))

		return huma.Error500InternalServerError(internalMsg)
	}
}
