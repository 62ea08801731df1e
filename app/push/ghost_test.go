package push

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func ghostSignature(body []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s%s", body, timestamp)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGhostVerifyValidSignature(t *testing.T) {
	provider := NewGhostProvider()
	body := []byte(`{"post":{"current":{"title":"Hello"}}}`)
	secret := "webhook-secret"
	timestamp := "1688378400000"

	credential := fmt.Sprintf("sha256=%s, t=%s", ghostSignature(body, timestamp, secret), timestamp)

	if !provider.Verify(body, credential, secret) {
		t.Error("Expected valid signature to verify")
	}
}

func TestGhostVerifyTamperedBody(t *testing.T) {
	provider := NewGhostProvider()
	body := []byte(`{"post":{"current":{"title":"Hello"}}}`)
	secret := "webhook-secret"
	timestamp := "1688378400000"

	credential := fmt.Sprintf("sha256=%s, t=%s", ghostSignature(body, timestamp, secret), timestamp)
	tampered := []byte(`{"post":{"current":{"title":"Evil"}}}`)

	if provider.Verify(tampered, credential, secret) {
		t.Error("Expected tampered body to be rejected")
	}
}

func TestGhostVerifyMissingTimestamp(t *testing.T) {
	provider := NewGhostProvider()
	body := []byte(`{"post":{}}`)
	secret := "webhook-secret"

	// Hash computed without a timestamp component still fails: the t part
	// of the credential is mandatory.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	credential := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if provider.Verify(body, credential, secret) {
		t.Error("Expected credential without timestamp to be rejected")
	}
}

func TestGhostVerifyMissingHash(t *testing.T) {
	provider := NewGhostProvider()

	if provider.Verify([]byte("{}"), "t=1688378400000", "secret") {
		t.Error("Expected credential without hash to be rejected")
	}
}

func TestGhostVerifyEmptyInputs(t *testing.T) {
	provider := NewGhostProvider()
	body := []byte("{}")
	timestamp := "1688378400000"
	credential := fmt.Sprintf("sha256=%s, t=%s", ghostSignature(body, timestamp, "secret"), timestamp)

	if provider.Verify(body, "", "secret") {
		t.Error("Expected missing credential to be rejected")
	}
	if provider.Verify(body, credential, "") {
		t.Error("Expected missing secret to be rejected")
	}
}

func TestGhostNormalize(t *testing.T) {
	provider := NewGhostProvider()

	payload := map[string]any{
		"post": map[string]any{
			"current": map[string]any{
				"title":          "Hello World",
				"url":            "https://blog.example.com/hello-world/",
				"custom_excerpt": "A greeting",
				"html":           "<p>Hello</p>",
				"feature_image":  "https://blog.example.com/img.png",
				"published_at":   "2023-07-03T10:00:00Z",
			},
		},
	}

	item := provider.Normalize(payload)
	if item == nil {
		t.Fatal("Expected normalized item, got nil")
	}

	if item.Title != "Hello World" {
		t.Errorf("Expected title 'Hello World', got: %s", item.Title)
	}
	if item.URL != "https://blog.example.com/hello-world/" {
		t.Errorf("Expected post URL, got: %s", item.URL)
	}
	if item.Description != "A greeting" {
		t.Errorf("Expected description from custom_excerpt, got: %s", item.Description)
	}
	if item.Content != "<p>Hello</p>" {
		t.Errorf("Expected html content, got: %s", item.Content)
	}
	if item.ThumbnailURL != "https://blog.example.com/img.png" {
		t.Errorf("Expected feature image as thumbnail, got: %s", item.ThumbnailURL)
	}
	if item.PublishedAt == nil {
		t.Error("Expected publish time to be parsed")
	}
}

func TestGhostNormalizeUnmappablePayloads(t *testing.T) {
	provider := NewGhostProvider()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{
			name:    "no post object",
			payload: map[string]any{"page": map[string]any{}},
		},
		{
			name: "missing title",
			payload: map[string]any{
				"post": map[string]any{
					"current": map[string]any{"url": "https://example.com/a"},
				},
			},
		},
		{
			name: "missing url",
			payload: map[string]any{
				"post": map[string]any{
					"current": map[string]any{"title": "No link"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if item := provider.Normalize(tt.payload); item != nil {
				t.Errorf("Expected nil for unmappable payload, got: %+v", item)
			}
		})
	}
}

func TestGhostNormalizeFlatPost(t *testing.T) {
	provider := NewGhostProvider()

	// Some hook configurations deliver the post fields without the
	// current wrapper.
	payload := map[string]any{
		"post": map[string]any{
			"title": "Flat",
			"url":   "https://blog.example.com/flat",
		},
	}

	item := provider.Normalize(payload)
	if item == nil {
		t.Fatal("Expected normalized item for flat post payload")
	}
	if item.Title != "Flat" {
		t.Errorf("Expected title 'Flat', got: %s", item.Title)
	}
}
