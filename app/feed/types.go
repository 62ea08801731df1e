package feed

import (
	"time"
)

// Item is a remote entry normalized across feed dialects and push payload
// shapes. Link always carries the canonical form of the item URL.
type Item struct {
	Title        string
	Link         string
	Snippet      string
	Content      string
	PublishedAt  *time.Time
	ThumbnailURL string

	ContentHash string
}
