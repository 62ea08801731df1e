package sync

import (
	"context"
	"net/http"
)

var _ Prober = (*HTTPProber)(nil)

// HTTPProber confirms item disappearance with a HEAD request, following
// redirects. Only 404 and 410 count as gone; any transport failure or
// other status is inconclusive.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

func NewHTTPProber(client *http.Client, userAgent string) *HTTPProber {
	return &HTTPProber{client: client, userAgent: userAgent}
}

func (p *HTTPProber) Gone(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return true, nil
	}

	return false, nil
}
