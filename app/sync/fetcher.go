package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxFeedBytes = 10 << 20

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads feed documents. The configured identity header
// matters: several origins serve bot-hostile responses to non-browser
// user agents.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
