package push

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"
)

// WordPressProvider handles webhook plugins that POST the post object on
// publish. Authentication is a shared token carried as the "token" query
// parameter and compared against the source's secret.
type WordPressProvider struct{}

func NewWordPressProvider() *WordPressProvider {
	return &WordPressProvider{}
}

func (*WordPressProvider) Kind() string {
	return "wordpress"
}

func (*WordPressProvider) Credential(_ http.Header, query url.Values) string {
	return query.Get("token")
}

func (*WordPressProvider) Verify(_ []byte, credential, secret string) bool {
	if credential == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(secret)) == 1
}

// Normalize maps a WordPress publish webhook payload. The permalink lives
// either on the post object or at the top level depending on the plugin
// version.
func (*WordPressProvider) Normalize(payload map[string]any) *NormalizedItem {
	post, ok := payload["post"].(map[string]any)
	if !ok {
		return nil
	}

	item := &NormalizedItem{
		Title:        stringField(post, "post_title"),
		URL:          stringField(post, "permalink"),
		Description:  stringField(post, "post_excerpt"),
		Content:      stringField(post, "post_content"),
		ThumbnailURL: stringField(payload, "post_thumbnail"),
	}
	if item.URL == "" {
		item.URL = stringField(payload, "post_permalink")
	}

	if item.Title == "" || item.URL == "" {
		return nil
	}

	if ts := stringField(post, "post_date_gmt"); ts != "" {
		if parsed, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
			item.PublishedAt = &parsed
		}
	}

	return item
}
