package feed

import (
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	url := "https://example.com/posts/42"

	hash1 := Fingerprint(url)
	hash2 := Fingerprint(url)

	if hash1 != hash2 {
		t.Errorf("Expected identical fingerprints for identical URLs, got %q and %q", hash1, hash2)
	}
}

func TestFingerprintDiffers(t *testing.T) {
	hash1 := Fingerprint("https://example.com/posts/42")
	hash2 := Fingerprint("https://example.com/posts/43")

	if hash1 == hash2 {
		t.Error("Expected different fingerprints for different URLs")
	}
}

func TestFingerprintLength(t *testing.T) {
	hash := Fingerprint("https://example.com")

	if len(hash) != 32 {
		t.Errorf("Expected 32-character fingerprint, got %d characters", len(hash))
	}

	for _, c := range hash {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Expected lowercase hex fingerprint, got %q", hash)
			break
		}
	}
}

func TestFingerprintMatchesCanonicalForm(t *testing.T) {
	a := Fingerprint(Canonicalize("https://example.com/a?utm_source=x"))
	b := Fingerprint(Canonicalize("https://example.com/a/"))

	if a != b {
		t.Error("Expected canonical-equivalent URLs to share a fingerprint")
	}
}
