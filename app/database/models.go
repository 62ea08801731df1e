package database

import (
	"time"
)

// Source kinds. "feed" is pull-based; the rest are push providers.
const (
	KindFeed      = "feed"
	KindGhost     = "ghost"
	KindWordPress = "wordpress"
)

// Verification states for a content source.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Sync states for a content source. "syncing" is re-enterable, never a
// lock: a crash mid-sync leaves the row in syncing and the next cycle
// simply runs again.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// Imported item states.
const (
	ItemStatusActive         = "active"
	ItemStatusSourceArchived = "source_archived"
)

// ContentSource is a registered remote origin owned by one account.
type ContentSource struct {
	ID           string
	AccountID    string
	Kind         string
	URL          string
	Name         string
	Active       bool
	Verification string
	SyncStatus   string
	LastSyncedAt *time.Time
	LastPushAt   *time.Time
	PushSecret   string
	ItemCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Eligible reports whether the source may be ingested.
func (s *ContentSource) Eligible() bool {
	return s.Active && s.Verification == VerificationVerified
}

// ImportedItem is a locally-tracked content record produced by ingestion.
// The pair (AccountID, URL) is unique; re-ingesting the same canonical URL
// updates the existing record in place.
type ImportedItem struct {
	ID           string
	SourceID     *string // nil for ad-hoc imports
	AccountID    string
	URL          string // canonical form
	ContentHash  string
	Title        string
	Snippet      string
	Body         *string
	PublishedAt  *time.Time
	ThumbnailURL *string
	Status       string
	OriginName   string
	AutoImported bool
	SyncedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
