package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// POST /shorten - Create short URL
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Derives a deterministic short URL for the given URL. Shortening the same URL again returns the same short URL.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.CreateShortURL)

	// GET /resolve - Look up a full short URL
	huma.Register(api, huma.Operation{
		OperationID: "resolve-short-url",
		Method:      http.MethodGet,
		Path:        "/resolve",
		Summary:     "Resolve short URL",
		Description: "Returns the original URL mapped to a full short URL.",
		Tags:        []string{"URLs"},
	}, urlHandler.ResolveShortURL)

	// GET /{code} - Redirect to original URL
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.RedirectToURL)
}
