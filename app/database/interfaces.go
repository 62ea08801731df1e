package database

import (
	"time"
)

type SourceRepository interface {
	GetSource(id string) (*ContentSource, error)
	GetSourceByURL(accountID, url string) (*ContentSource, error)
	GetEligibleSources() ([]ContentSource, error)
	GetSourceCount() (int, error)

	CreateSource(source ContentSource) (string, error)
	UpsertSeedSource(accountID, kind, url, name, pushSecret string) (string, bool, error)

	UpdateSyncStatus(id, status string) error
	FinishSync(id, status string, itemCount int) error
	TouchLastPush(id string) error
}

type ItemRepository interface {
	GetItemByFingerprint(accountID, contentHash string) (*ImportedItem, error)
	GetKnownURLs(sourceID string) (map[string]struct{}, error)
	GetActiveItemsSince(sourceID string, horizon time.Time) ([]ImportedItem, error)
	GetItemCount() (int, error)
	CountSourceItems(sourceID string) (int, error)

	UpsertItem(item ImportedItem) (string, error)
	MarkArchived(itemID string) error
}
