package sync

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"contentsync/app/database"
	"contentsync/app/feed"
	"contentsync/app/notify"
	"contentsync/app/push"
)

// Parser turns a raw feed document into items.
type Parser interface {
	Run(data []byte) []feed.Item
}

// Engine is the ingestion orchestrator behind the pull, batch and push
// entry points. It owns the sync state machine; everything it touches is
// idempotent, so two concurrent runs over the same source waste work but
// never corrupt data.
type Engine struct {
	sources   database.SourceRepository
	items     database.ItemRepository
	fetcher   Fetcher
	parser    Parser
	archiver  Archiver
	verifier  OwnershipVerifier
	notifier  notify.Notifier
	providers push.Registry
}

func NewEngine(sources database.SourceRepository, items database.ItemRepository,
	fetcher Fetcher, parser Parser, archiver Archiver,
	verifier OwnershipVerifier, notifier notify.Notifier, providers push.Registry) *Engine {
	return &Engine{
		sources:   sources,
		items:     items,
		fetcher:   fetcher,
		parser:    parser,
		archiver:  archiver,
		verifier:  verifier,
		notifier:  notifier,
		providers: providers,
	}
}

// SyncSource runs one full pull cycle for a registered source: fetch,
// parse, delta import, archive reconciliation. Failures end up in the
// outcome, not in a returned error.
func (e *Engine) SyncSource(ctx context.Context, source *database.ContentSource, auto bool) Outcome {
	outcome := Outcome{Source: source, SourceURL: source.URL}

	if !source.Eligible() {
		outcome.Status = StatusSkipped
		outcome.Errors = append(outcome.Errors, "source is not active and verified")
		return outcome
	}

	if err := e.sources.UpdateSyncStatus(source.ID, database.SyncStatusSyncing); err != nil {
		slog.Warn("Failed to mark source syncing", "source_id", source.ID, "error", err)
	}

	data, err := e.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return e.failSync(&outcome, fmt.Errorf("fetch: %w", err))
	}

	items := e.parser.Run(data)
	outcome.ItemsFound = len(items)
	SortNewestFirst(items)

	known, err := e.items.GetKnownURLs(source.ID)
	if err != nil {
		return e.failSync(&outcome, fmt.Errorf("load known urls: %w", err))
	}

	for _, item := range Delta(items, known) {
		created, ref, err := e.upsertOne(source.AccountID, &source.ID, source.Name, item, auto)
		if err != nil {
			outcome.ItemsFailed++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("import %s: %v", item.Link, err))
			continue
		}
		if created {
			outcome.ItemsImported++
		} else {
			outcome.ItemsUpdated++
		}
		outcome.Articles = append(outcome.Articles, ref)
	}

	e.archiver.Run(ctx, source.ID, items)

	count, err := e.items.CountSourceItems(source.ID)
	if err != nil {
		slog.Warn("Failed to count source items", "source_id", source.ID, "error", err)
		count = -1
	}
	if err := e.sources.FinishSync(source.ID, database.SyncStatusSynced, count); err != nil {
		slog.Warn("Failed to finish sync", "source_id", source.ID, "error", err)
	}

	outcome.Status = StatusSynced
	slog.Info("Source synced",
		"source_id", source.ID,
		"items_found", outcome.ItemsFound,
		"items_imported", outcome.ItemsImported,
		"items_updated", outcome.ItemsUpdated,
		"items_failed", outcome.ItemsFailed)

	if outcome.ItemsImported > 0 {
		e.notifier.Notify(ctx, source.AccountID, "content_imported",
			fmt.Sprintf("%d new items imported from %s", outcome.ItemsImported, source.Name),
			map[string]any{"source_id": source.ID, "items_imported": outcome.ItemsImported})
	}

	return outcome
}

// SyncSourceSafe is SyncSource with panic isolation, for callers that
// iterate many sources in one run.
func (e *Engine) SyncSourceSafe(ctx context.Context, source *database.ContentSource, auto bool) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while syncing source", "source_id", source.ID, "panic", r)
			outcome = Outcome{Source: source, SourceURL: source.URL, Status: StatusError,
				Errors: []string{fmt.Sprintf("panic: %v", r)}}
			if err := e.sources.FinishSync(source.ID, database.SyncStatusError, -1); err != nil {
				slog.Warn("Failed to finish sync after panic", "source_id", source.ID, "error", err)
			}
		}
	}()
	return e.SyncSource(ctx, source, auto)
}

// SyncAll runs a batch cycle over every eligible source. One source's
// failure never blocks the rest.
func (e *Engine) SyncAll(ctx context.Context) (BatchResult, error) {
	sources, err := e.sources.GetEligibleSources()
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load eligible sources: %w", err)
	}

	result := BatchResult{Results: []SyncResult{}}
	for i := range sources {
		source := &sources[i]

		verified, err := e.verifier.IsOwnershipVerified(source.ID)
		if err != nil {
			slog.Warn("Ownership check failed", "source_id", source.ID, "error", err)
			verified = false
		}
		if !verified {
			result.Results = append(result.Results, SyncResult{
				SourceID: source.ID,
				Status:   StatusSkipped,
				Error:    "ownership not verified",
			})
			continue
		}

		outcome := e.SyncSourceSafe(ctx, source, true)
		result.SourcesProcessed++
		result.TotalNewArticles += outcome.ItemsImported
		if outcome.Status == StatusError {
			result.Errors++
		}
		result.Results = append(result.Results, outcome.SyncResult())
	}

	slog.Info("Batch sync finished",
		"sources_processed", result.SourcesProcessed,
		"new_articles", result.TotalNewArticles,
		"errors", result.Errors)

	return result, nil
}

// SyncAdHoc imports every item of an unregistered feed URL. Imported
// records carry no source and are never touched by archive detection.
func (e *Engine) SyncAdHoc(ctx context.Context, accountID, feedURL string) Outcome {
	outcome := Outcome{SourceURL: feedURL}

	data, err := e.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		outcome.Status = StatusError
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("fetch: %v", err))
		return outcome
	}

	items := e.parser.Run(data)
	outcome.ItemsFound = len(items)
	SortNewestFirst(items)

	origin := feedURL
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		origin = u.Host
	}

	for _, item := range items {
		created, ref, err := e.upsertOne(accountID, nil, origin, item, false)
		if err != nil {
			outcome.ItemsFailed++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("import %s: %v", item.Link, err))
			continue
		}
		if created {
			outcome.ItemsImported++
		} else {
			outcome.ItemsUpdated++
		}
		outcome.Articles = append(outcome.Articles, ref)
	}

	outcome.Status = StatusSynced
	return outcome
}

// IngestPush stores one already-authenticated push payload. The source's
// push timestamp is touched no matter what, so owners can see deliveries
// arriving even when payloads do not map to an item.
func (e *Engine) IngestPush(ctx context.Context, source *database.ContentSource, payload map[string]any) Outcome {
	outcome := Outcome{Source: source, SourceURL: source.URL}

	if err := e.sources.TouchLastPush(source.ID); err != nil {
		slog.Warn("Failed to record push delivery", "source_id", source.ID, "error", err)
	}

	provider, ok := e.providers.Get(source.Kind)
	if !ok {
		outcome.Status = StatusSkipped
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("unsupported push provider: %s", source.Kind))
		return outcome
	}

	if !source.Eligible() {
		outcome.Status = StatusSkipped
		outcome.Errors = append(outcome.Errors, "source is not active and verified")
		return outcome
	}

	normalized := provider.Normalize(payload)
	if normalized == nil || normalized.URL == "" {
		slog.Debug("Push payload not mappable, acknowledged", "source_id", source.ID, "kind", source.Kind)
		outcome.Status = StatusSkipped
		return outcome
	}

	item := feed.Item{
		Title:        normalized.Title,
		Link:         feed.Canonicalize(normalized.URL),
		Snippet:      feed.Snippet(cmp.Or(normalized.Description, normalized.Content)),
		Content:      normalized.Content,
		PublishedAt:  normalized.PublishedAt,
		ThumbnailURL: normalized.ThumbnailURL,
	}
	item.ContentHash = feed.Fingerprint(item.Link)

	outcome.ItemsFound = 1
	created, ref, err := e.upsertOne(source.AccountID, &source.ID, source.Name, item, true)
	if err != nil {
		outcome.ItemsFailed++
		outcome.Status = StatusError
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("import %s: %v", item.Link, err))
		return outcome
	}
	if created {
		outcome.ItemsImported++
	} else {
		outcome.ItemsUpdated++
	}
	outcome.Articles = append(outcome.Articles, ref)
	outcome.Status = StatusSynced

	if count, err := e.items.CountSourceItems(source.ID); err == nil {
		if err := e.sources.FinishSync(source.ID, database.SyncStatusSynced, count); err != nil {
			slog.Warn("Failed to update source after push", "source_id", source.ID, "error", err)
		}
	}

	return outcome
}

// upsertOne writes a single item through the deduplicating upsert. The
// fingerprint lookup beforehand tells created and updated apart, which
// the unique-constraint upsert alone cannot.
func (e *Engine) upsertOne(accountID string, sourceID *string, originName string, item feed.Item, auto bool) (bool, ArticleRef, error) {
	existing, err := e.items.GetItemByFingerprint(accountID, item.ContentHash)
	if err != nil {
		return false, ArticleRef{}, err
	}

	now := time.Now().UTC()
	record := database.ImportedItem{
		SourceID:     sourceID,
		AccountID:    accountID,
		URL:          item.Link,
		ContentHash:  item.ContentHash,
		Title:        item.Title,
		Snippet:      item.Snippet,
		PublishedAt:  item.PublishedAt,
		Status:       database.ItemStatusActive,
		OriginName:   originName,
		AutoImported: auto,
		SyncedAt:     &now,
	}
	if item.Content != "" {
		record.Body = &item.Content
	}
	if item.ThumbnailURL != "" {
		record.ThumbnailURL = &item.ThumbnailURL
	}

	id, err := e.items.UpsertItem(record)
	if err != nil {
		return false, ArticleRef{}, err
	}

	return existing == nil, ArticleRef{ID: id, Title: item.Title, URL: item.Link}, nil
}

func (e *Engine) failSync(outcome *Outcome, err error) Outcome {
	slog.Error("Source sync failed", "source_id", outcome.Source.ID, "error", err)
	outcome.Status = StatusError
	outcome.Errors = append(outcome.Errors, err.Error())
	if ferr := e.sources.FinishSync(outcome.Source.ID, database.SyncStatusError, -1); ferr != nil {
		slog.Warn("Failed to record sync error", "source_id", outcome.Source.ID, "error", ferr)
	}
	return *outcome
}
