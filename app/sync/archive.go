package sync

import (
	"context"
	"log/slog"
	"time"

	"contentsync/app/database"
	"contentsync/app/feed"
)

// Per-cycle cap on live probes. Items beyond the cap wait for a later
// cycle, so mass disappearance is absorbed gradually instead of hammering
// the origin.
const archiveProbeLimit = 5

// Archiver reconciles stored items against the latest feed snapshot.
type Archiver interface {
	Run(ctx context.Context, sourceID string, snapshot []feed.Item)
}

var _ Archiver = (*ArchiveDetector)(nil)

// ArchiveDetector finds stored items that dropped out of the feed and
// confirms each disappearance with a live probe before archiving it.
// Feeds are rolling windows, so absence alone proves nothing; only an
// explicit not-found or gone response does.
type ArchiveDetector struct {
	items  database.ItemRepository
	prober Prober
}

func NewArchiveDetector(items database.ItemRepository, prober Prober) *ArchiveDetector {
	return &ArchiveDetector{items: items, prober: prober}
}

func (d *ArchiveDetector) Run(ctx context.Context, sourceID string, snapshot []feed.Item) {
	horizon := feedHorizon(snapshot)
	if horizon.IsZero() {
		slog.Debug("Archive detection skipped, no dated items in snapshot", "source_id", sourceID)
		return
	}

	present := make(map[string]struct{}, len(snapshot))
	for _, item := range snapshot {
		present[item.Link] = struct{}{}
	}

	stored, err := d.items.GetActiveItemsSince(sourceID, horizon)
	if err != nil {
		slog.Warn("Archive detection failed to load stored items", "source_id", sourceID, "error", err)
		return
	}

	probes := 0
	for _, item := range stored {
		if _, ok := present[item.URL]; ok {
			continue
		}
		if probes >= archiveProbeLimit {
			slog.Debug("Archive probe limit reached", "source_id", sourceID)
			break
		}
		probes++

		gone, err := d.prober.Gone(ctx, item.URL)
		if err != nil {
			slog.Warn("Archive probe failed", "url", item.URL, "error", err)
			continue
		}
		if !gone {
			continue
		}

		if err := d.items.MarkArchived(item.ID); err != nil {
			slog.Warn("Failed to archive item", "item_id", item.ID, "error", err)
			continue
		}
		slog.Info("Item archived", "source_id", sourceID, "url", item.URL)
	}
}

// feedHorizon returns the earliest publish time in the snapshot. Stored
// items older than the horizon fall outside the feed's window and their
// absence is expected, not evidence of removal.
func feedHorizon(items []feed.Item) time.Time {
	var horizon time.Time
	for _, item := range items {
		if item.PublishedAt == nil {
			continue
		}
		if horizon.IsZero() || item.PublishedAt.Before(horizon) {
			horizon = *item.PublishedAt
		}
	}
	return horizon
}
