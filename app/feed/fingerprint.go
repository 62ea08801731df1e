package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 32

// Fingerprint derives the dedup key for a canonical URL: SHA-256 of the
// URL bytes, truncated to 32 hex characters. Callers canonicalize first;
// identical canonical URLs always yield identical fingerprints.
func Fingerprint(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
