package api

import (
	"context"
	"time"

	"contentsync/app/database"
	"contentsync/app/push"
	"contentsync/app/ratelimit"
	"contentsync/app/sync"
	"contentsync/app/tasks"
)

type SyncEngineInterface interface {
	SyncSource(ctx context.Context, source *database.ContentSource, auto bool) sync.Outcome
	SyncSourceSafe(ctx context.Context, source *database.ContentSource, auto bool) sync.Outcome
	SyncAdHoc(ctx context.Context, accountID, feedURL string) sync.Outcome
	SyncAll(ctx context.Context) (sync.BatchResult, error)
	IngestPush(ctx context.Context, source *database.ContentSource, payload map[string]any) sync.Outcome
}

var _ SyncEngineInterface = (*sync.Engine)(nil)

type Handler struct {
	sourceRepo     database.SourceRepository
	itemRepo       database.ItemRepository
	engine         SyncEngineInterface
	providers      push.Registry
	limiter        ratelimit.Limiter
	scheduler      tasks.TaskSchedulerInterface
	syncRateMax    int
	syncRateWindow time.Duration
}

// PullSyncRequest triggers one interactive sync. Callers name either a
// registered source by ID or a URL; a URL that matches no registered
// source is imported ad-hoc.
type PullSyncRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	SourceID  string `json:"source_id"`
	URL       string `json:"url"`
}

// PushResponse acknowledges a verified push delivery.
type PushResponse struct {
	Received bool   `json:"received"`
	Stored   bool   `json:"stored"`
	Updated  bool   `json:"updated,omitempty"`
	ItemURL  string `json:"item_url,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
