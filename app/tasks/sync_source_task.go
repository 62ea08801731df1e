package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"contentsync/app/database"
	"contentsync/app/sync"
)

// SourceSyncer is the slice of the sync engine a background task needs.
type SourceSyncer interface {
	SyncSourceSafe(ctx context.Context, source *database.ContentSource, auto bool) sync.Outcome
}

// SyncSourceTask runs one pull cycle for a registered source. A failed
// cycle is not retried in place; the source stays in error state and the
// next scheduler tick picks it up again.
type SyncSourceTask struct {
	Task
	sourceRepo database.SourceRepository
	engine     SourceSyncer
}

func NewSyncSourceTask(sourceID string, sourceRepo database.SourceRepository, engine SourceSyncer) *SyncSourceTask {
	task := NewTask(TaskTypeSyncSource, sourceID)
	task.MaxRetries = 0

	return &SyncSourceTask{
		Task:       task,
		sourceRepo: sourceRepo,
		engine:     engine,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	source, err := t.sourceRepo.GetSource(t.SourceID)
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}
	if source == nil {
		slog.Warn("Source disappeared before sync, skipping", "source_id", t.SourceID)
		return nil
	}

	outcome := t.engine.SyncSourceSafe(ctx, source, true)

	slog.Info("Task completed",
		"type", t.GetType(),
		"source_id", t.SourceID,
		"duration", t.GetDuration(),
		"status", outcome.Status,
		"imported", outcome.ItemsImported,
		"failed", outcome.ItemsFailed)

	if outcome.Status == sync.StatusError {
		return fmt.Errorf("source sync failed: %s", firstError(outcome.Errors))
	}

	return nil
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[0]
}
