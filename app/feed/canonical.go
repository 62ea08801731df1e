package feed

import (
	"net/url"
	"strings"
)

// Canonicalize reduces a URL to its stable comparison form: query string
// and fragment removed, a single trailing slash dropped unless the path is
// root. Two links that differ only by tracking parameters, fragment or a
// trailing slash canonicalize identically, which is what duplicate
// detection and archive detection key on.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		// Best-effort string transform; canonicalization never fails the
		// caller.
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(raw, "/")
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}
