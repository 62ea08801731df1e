package push

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NormalizedItem is the provider-independent result of mapping a push
// payload. A nil item from Normalize means "acknowledge receipt, nothing
// to ingest": push senders disable subscriptions on repeated failure
// responses, so an unmappable payload is never an error.
type NormalizedItem struct {
	Title        string
	URL          string
	Description  string
	Content      string
	PublishedAt  *time.Time
	ThumbnailURL string
}

// Provider binds the signature check and the payload mapping for one push
// provider. Providers are selected by the source's recorded kind, never by
// inspecting the payload shape.
type Provider interface {
	Kind() string

	// Credential extracts the provider's request credential from the
	// incoming headers or query parameters.
	Credential(header http.Header, query url.Values) string

	// Verify authenticates the raw request body against the credential and
	// the source's shared secret. It runs before any payload parsing.
	Verify(body []byte, credential, secret string) bool

	// Normalize maps a decoded payload into a NormalizedItem, or nil when
	// the payload cannot be mapped.
	Normalize(payload map[string]any) *NormalizedItem
}

// Registry is the closed set of supported push providers, keyed by source
// kind.
type Registry map[string]Provider

func NewRegistry() Registry {
	registry := Registry{}
	for _, provider := range []Provider{NewGhostProvider(), NewWordPressProvider()} {
		registry[provider.Kind()] = provider
	}
	return registry
}

func (r Registry) Get(kind string) (Provider, bool) {
	provider, ok := r[kind]
	return provider, ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
