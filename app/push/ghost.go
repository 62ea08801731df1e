package push

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GhostProvider handles Ghost admin webhooks. Ghost signs the request body
// concatenated with a timestamp using HMAC-SHA256 and transmits both in
// the X-Ghost-Signature header as "sha256=<hex>, t=<timestamp>".
type GhostProvider struct{}

func NewGhostProvider() *GhostProvider {
	return &GhostProvider{}
}

func (*GhostProvider) Kind() string {
	return "ghost"
}

func (*GhostProvider) Credential(header http.Header, _ url.Values) string {
	return header.Get("X-Ghost-Signature")
}

func (*GhostProvider) Verify(body []byte, credential, secret string) bool {
	if credential == "" || secret == "" {
		return false
	}

	var hash, timestamp string
	for _, part := range strings.Split(credential, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "sha256":
			hash = value
		case "t":
			timestamp = value
		}
	}

	// Both components are required; a matching hash with a missing
	// timestamp is still rejected.
	if hash == "" || timestamp == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s%s", body, timestamp)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(hash))
}

// Normalize maps a Ghost post webhook payload. Ghost nests the post under
// post.current on publish/update events.
func (*GhostProvider) Normalize(payload map[string]any) *NormalizedItem {
	post, ok := payload["post"].(map[string]any)
	if !ok {
		return nil
	}

	current, ok := post["current"].(map[string]any)
	if !ok {
		current = post
	}

	item := &NormalizedItem{
		Title:        stringField(current, "title"),
		URL:          stringField(current, "url"),
		Description:  stringField(current, "custom_excerpt"),
		Content:      stringField(current, "html"),
		ThumbnailURL: stringField(current, "feature_image"),
	}
	if item.Description == "" {
		item.Description = stringField(current, "excerpt")
	}

	if item.Title == "" || item.URL == "" {
		return nil
	}

	if ts := stringField(current, "published_at"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			item.PublishedAt = &parsed
		}
	}

	return item
}
