package feed

import (
	"bytes"
	"cmp"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes (RSS 2.0 or Atom) into normalized items.
// Entries without a usable link are dropped; an unreadable document yields
// an empty list rather than an error, so callers treat it as "no items
// found" instead of a fetch failure.
func (p *Parser) Run(data []byte) []Item {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Feed document unparseable, treating as empty", "error", err)
		return nil
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		item, ok := p.normalizeItem(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items
}

func (p *Parser) normalizeItem(entry *gofeed.Item) (Item, bool) {
	link := strings.TrimSpace(entry.Link)
	if link == "" && len(entry.Links) > 0 {
		link = strings.TrimSpace(entry.Links[0])
	}
	if link == "" {
		return Item{}, false
	}

	canonical := Canonicalize(link)

	item := Item{
		Title:       strings.TrimSpace(entry.Title),
		Link:        canonical,
		Snippet:     Snippet(cmp.Or(entry.Description, entry.Content)),
		Content:     entry.Content,
		ContentHash: Fingerprint(canonical),
	}

	// RSS pubDate / Atom published, falling back to Atom updated.
	if entry.PublishedParsed != nil {
		item.PublishedAt = entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = entry.UpdatedParsed
	}

	if entry.Image != nil {
		item.ThumbnailURL = entry.Image.URL
	}

	return item, true
}
