package handlers

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The absolute http(s) URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		Code        string `doc:"The short code"                       example:"prF0K7gJ"                           json:"code"`
		ShortURL    string `doc:"The full short URL"                   example:"https://eg.org/prF0K7gJ"            json:"shortUrl"`
		OriginalURL string `doc:"The canonical original URL"           example:"https://example.com/very/long/path" json:"originalUrl"`
		Salt        int    `doc:"Collision salt used to derive the code" example:"0"                                json:"salt"`
	}
}

// RedirectRequest is the request for redirecting a short code.
type RedirectRequest struct {
	Code  string `doc:"The short code"                        example:"prF0K7gJ" path:"code"`
	Proto string `doc:"Scheme the short URL was requested on" example:"https"    header:"X-Forwarded-Proto"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `header:"Location"`
	}
}

// ResolveRequest looks up a full short URL.
type ResolveRequest struct {
	ShortURL string `doc:"The full short URL" example:"https://eg.org/prF0K7gJ" query:"shortUrl"`
}

// ResolveResponse carries the original URL of a short URL.
type ResolveResponse struct {
	Body struct {
		ShortURL string `doc:"The queried short URL" example:"https://eg.org/prF0K7gJ" json:"shortUrl"`
		LongURL  string `doc:"The original URL"      example:"https://example.com/"    json:"longUrl"`
	}
}
