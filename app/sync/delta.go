package sync

import (
	"sort"

	"contentsync/app/feed"
)

// Delta returns the prefix of items whose canonical URL is not yet known
// for the source. Items arrive newest-first; iteration stops at the first
// already-known URL and everything after it is assumed previously seen.
// A feed that republishes an old item out of order can therefore mask
// newer unknown items further down; that trade keeps per-cycle cost
// bounded and is accepted. A source with no known URLs imports the entire
// feed.
func Delta(items []feed.Item, known map[string]struct{}) []feed.Item {
	fresh := make([]feed.Item, 0, len(items))
	for _, item := range items {
		if _, ok := known[item.Link]; ok {
			break
		}
		fresh = append(fresh, item)
	}
	return fresh
}

// SortNewestFirst orders items by publish time descending. Items without
// a date sort last; the order among them is preserved.
func SortNewestFirst(items []feed.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
