package feed

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

const snippetLimit = 300

var sentenceBoundaries = []string{". ", "! ", "? "}

// Snippet turns raw HTML or text into a bounded plain-text preview: tags
// stripped, entities decoded, whitespace collapsed, truncated near
// snippetLimit characters preferring a sentence boundary, then a word
// boundary. Already-plain short text passes through unchanged.
func Snippet(raw string) string {
	text := stripTags(raw)
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")

	if len([]rune(text)) <= snippetLimit {
		return text
	}

	return truncate(text, snippetLimit)
}

func stripTags(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}

	var b strings.Builder
	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}

func truncate(text string, limit int) string {
	cut := string([]rune(text)[:limit])

	for _, boundary := range sentenceBoundaries {
		// Boundary positions are byte offsets; count runes before
		// comparing against the half-cap threshold.
		if i := strings.LastIndex(cut, boundary); i >= 0 && len([]rune(cut[:i+1])) > limit/2 {
			return cut[:i+1] + "…"
		}
	}

	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i] + "…"
	}

	return cut + "…"
}
