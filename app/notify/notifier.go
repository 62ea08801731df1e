package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers user-facing events. Implementations are
// fire-and-forget: delivery failure is logged and never surfaces to the
// ingestion pipeline.
type Notifier interface {
	Notify(ctx context.Context, accountID, kind, message string, metadata map[string]any)
	Close() error
}

// LogNotifier writes notifications to the structured log. Used when no
// message broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (*LogNotifier) Notify(_ context.Context, accountID, kind, message string, metadata map[string]any) {
	slog.Info("Notification",
		"account_id", accountID,
		"kind", kind,
		"message", message,
		"metadata", metadata)
}

func (*LogNotifier) Close() error {
	return nil
}
