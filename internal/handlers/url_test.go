package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/shortener/mocks"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	testURL      = "https://example.com/"
	testCode     = "prF0K7gJ"
	testShortURL = "https://eg.org/prF0K7gJ"
)

var errMock = errors.New("mock error")

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return err }
}

// capturePublish records every published event.
func capturePublish[T any](events *[]*T) messaging.Publish[T] {
	return func(_ context.Context, event *T) error {
		*events = append(*events, event)

		return nil
	}
}

func newTestHandler(s shortener.Store) *handlers.URLHandler {
	return handlers.NewURLHandler(
		shortener.NewShortener(s, nil, zap.NewNop()),
		"https",
		noopPublish[events.MappingCreatedEvent](),
		zap.NewNop(),
	)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, status, statusErr.GetStatus())
}

func TestCreateShortURL(t *testing.T) {
	t.Run("creates short url successfully", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, testCode, resp.Body.Code)
		assert.Equal(t, testShortURL, resp.Body.ShortURL)
		assert.Equal(t, testURL, resp.Body.OriginalURL)
		assert.Equal(t, 0, resp.Body.Salt)
		assert.Equal(t, resp.Body.ShortURL, resp.Headers.Location)
	})

	t.Run("returns same short url for same url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp1, err1 := handler.CreateShortURL(context.Background(), req)
		resp2, err2 := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, resp1.Body.ShortURL, resp2.Body.ShortURL)
	})

	t.Run("returns canonical original url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = "HTTPS://Example.COM:443"

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, testURL, resp.Body.OriginalURL)
		assert.Equal(t, testCode, resp.Body.Code)
	})

	t.Run("returns 400 for invalid urls", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		for _, raw := range []string{"", "   ", "not a url", "ftp://example.com/", "http:///path"} {
			req := &handlers.CreateShortURLRequest{}
			req.Body.URL = raw

			resp, err := handler.CreateShortURL(context.Background(), req)

			assert.Nil(t, resp, raw)
			requireStatus(t, err, http.StatusBadRequest)
		}
	})

	t.Run("publishes mapping event with request id", func(t *testing.T) {
		var published []*events.MappingCreatedEvent

		handler := handlers.NewURLHandler(
			shortener.NewShortener(store.NewMemoryStore(), nil, nil),
			"https",
			capturePublish(&published),
			zap.NewNop(),
		)

		ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{RequestID: "req-1"})

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		_, err := handler.CreateShortURL(ctx, req)

		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, testShortURL, published[0].ShortURL)
		assert.Equal(t, testCode, published[0].Code)
		assert.Equal(t, testURL, published[0].LongURL)
		assert.Equal(t, "req-1", published[0].RequestID)
		assert.False(t, published[0].CreatedAt.IsZero())
	})

	t.Run("publishes only when the mapping is new", func(t *testing.T) {
		var published []*events.MappingCreatedEvent

		handler := handlers.NewURLHandler(
			shortener.NewShortener(store.NewMemoryStore(), nil, nil),
			"https",
			capturePublish(&published),
			zap.NewNop(),
		)

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		for range 3 {
			_, err := handler.CreateShortURL(context.Background(), req)
			require.NoError(t, err)
		}

		assert.Len(t, published, 1)
	})

	t.Run("succeeds even when publish fails", func(t *testing.T) {
		handler := handlers.NewURLHandler(
			shortener.NewShortener(store.NewMemoryStore(), nil, nil),
			"https",
			errorPublish[events.MappingCreatedEvent](errMock),
			zap.NewNop(),
		)

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, testCode, resp.Body.Code)
	})
}

func TestCreateShortURL_ErrorPaths(t *testing.T) {
	t.Run("returns 500 when store probe fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		mockStore.EXPECT().Get(gomock.Any(), testShortURL).Return("", errMock)

		handler := newTestHandler(mockStore)

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("returns 500 when save fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		mockStore.EXPECT().Get(gomock.Any(), testShortURL).Return("", nil)
		mockStore.EXPECT().Set(gomock.Any(), testShortURL, testURL).Return(errMock)

		handler := newTestHandler(mockStore)

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("returns 503 when every candidate is taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return("https://other.example/", nil).Times(2)

		cfg, err := shortener.NewConfig(shortener.WithMaxAttempts(2))
		require.NoError(t, err)

		handler := handlers.NewURLHandler(
			shortener.NewShortener(mockStore, cfg, nil),
			"https",
			noopPublish[events.MappingCreatedEvent](),
			zap.NewNop(),
		)

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusServiceUnavailable)
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects to original url", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		handler := newTestHandler(memStore)

		createReq := &handlers.CreateShortURLRequest{}
		createReq.Body.URL = "https://example.com/very/long/path?q=1"

		createResp, err := handler.CreateShortURL(context.Background(), createReq)
		require.NoError(t, err)

		req := &handlers.RedirectRequest{Code: createResp.Body.Code}

		resp, err := handler.RedirectToURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, "https://example.com/very/long/path?q=1", resp.Headers.Location)
	})

	t.Run("uses forwarded proto to pick the short url", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		require.NoError(t, memStore.Set(context.Background(), "http://eg.org/abc", "https://plain.example/"))

		handler := newTestHandler(memStore)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc", Proto: "HTTP"})

		require.NoError(t, err)
		assert.Equal(t, "https://plain.example/", resp.Headers.Location)

		_, err = handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc"})
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("uses first scheme of a proxy chain", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		createReq := &handlers.CreateShortURLRequest{}
		createReq.Body.URL = testURL

		_, err := handler.CreateShortURL(context.Background(), createReq)
		require.NoError(t, err)

		for _, proto := range []string{"https, http", "https,http", " HTTPS ,http"} {
			resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: testCode, Proto: proto})

			require.NoError(t, err, proto)
			assert.Equal(t, testURL, resp.Headers.Location, proto)
		}
	})

	t.Run("returns 400 for malformed forwarded proto", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: testCode, Proto: "ht tp"})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "nonexistent"})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 500 on corrupt stored value", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		require.NoError(t, memStore.Set(context.Background(), "https://eg.org/bad", "not-absolute"))

		handler := newTestHandler(memStore)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "bad"})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		mockStore.EXPECT().Get(gomock.Any(), "https://eg.org/abc123").Return("", errMock)

		handler := newTestHandler(mockStore)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusInternalServerError)
	})
}

func TestResolveShortURL(t *testing.T) {
	t.Run("resolves a created short url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		createReq := &handlers.CreateShortURLRequest{}
		createReq.Body.URL = testURL

		_, err := handler.CreateShortURL(context.Background(), createReq)
		require.NoError(t, err)

		resp, err := handler.ResolveShortURL(context.Background(), &handlers.ResolveRequest{ShortURL: "HTTPS://EG.ORG/" + testCode})

		require.NoError(t, err)
		assert.Equal(t, testURL, resp.Body.LongURL)
	})

	t.Run("returns 400 for empty short url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.ResolveShortURL(context.Background(), &handlers.ResolveRequest{})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 404 for unknown short url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.ResolveShortURL(context.Background(), &handlers.ResolveRequest{ShortURL: testShortURL})

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestRequestMetaContext(t *testing.T) {
	t.Run("adds and retrieves request metadata from context", func(t *testing.T) {
		meta := handlers.RequestMeta{
			RequestID: "abc",
			ClientIP:  "192.168.1.1",
			UserAgent: "TestAgent/1.0",
		}

		ctx := handlers.ContextWithRequestMeta(context.Background(), meta)

		assert.Equal(t, meta, handlers.RequestMetaFromContext(ctx))
	})

	t.Run("returns empty metadata when not set", func(t *testing.T) {
		assert.Equal(t, handlers.RequestMeta{}, handlers.RequestMetaFromContext(context.Background()))
	})
}
