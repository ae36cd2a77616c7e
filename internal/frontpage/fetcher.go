package frontpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBodyBytes caps how much of a fetched page is read. Front
// pages and comment threads are far smaller; the cap guards against a
// pathological response.
const maxResponseBodyBytes = 10 << 20 // 10MB

// Response represents the result of an HTTP fetch.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher fetches content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a Fetcher backed by the given http.Client.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch performs an HTTP GET and returns the status code and body.
// The caller bounds the request through ctx.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch new request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("fetch do request: %w", doErr)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return nil, fmt.Errorf("fetch read body: %w", readErr)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
