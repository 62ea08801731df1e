package sync

import (
	"contentsync/app/database"
)

// Outcome statuses for one source sync.
const (
	StatusSynced  = "synced"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// ArticleRef identifies one imported or updated record in a sync response.
type ArticleRef struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Outcome is the full result of one single-source run, shared by the
// pull, batch and push entry points.
type Outcome struct {
	Source        *database.ContentSource
	SourceURL     string
	Status        string
	ItemsFound    int
	ItemsImported int
	ItemsUpdated  int
	ItemsFailed   int
	Articles      []ArticleRef
	Errors        []string
}

// SyncResult is the per-source line of a batch summary.
type SyncResult struct {
	SourceID      string `json:"source_id"`
	Status        string `json:"status"`
	NewArticles   int    `json:"new_articles"`
	TotalArticles int    `json:"total_articles"`
	Error         string `json:"error,omitempty"`
}

// BatchResult aggregates SyncResults across one batch run.
type BatchResult struct {
	SourcesProcessed int          `json:"sources_processed"`
	TotalNewArticles int          `json:"total_new_articles"`
	Errors           int          `json:"errors"`
	Results          []SyncResult `json:"results"`
}

// PullReport is the body of an interactively-triggered sync response.
// Failures are reported here, never as a transport error.
type PullReport struct {
	SourceID      string       `json:"source_id"`
	SourceURL     string       `json:"source_url"`
	ItemsFound    int          `json:"items_found"`
	ItemsImported int          `json:"items_imported"`
	ItemsUpdated  int          `json:"items_updated"`
	ItemsFailed   int          `json:"items_failed"`
	Articles      []ArticleRef `json:"articles"`
	Errors        []string     `json:"errors,omitempty"`
}

// PullReport converts an outcome into the pull endpoint's response shape.
func (o Outcome) PullReport() PullReport {
	report := PullReport{
		SourceURL:     o.SourceURL,
		ItemsFound:    o.ItemsFound,
		ItemsImported: o.ItemsImported,
		ItemsUpdated:  o.ItemsUpdated,
		ItemsFailed:   o.ItemsFailed,
		Articles:      o.Articles,
		Errors:        o.Errors,
	}
	if report.Articles == nil {
		report.Articles = []ArticleRef{}
	}
	if o.Source != nil {
		report.SourceID = o.Source.ID
	}
	return report
}

// SyncResult converts an outcome into a batch summary line.
func (o Outcome) SyncResult() SyncResult {
	result := SyncResult{
		Status:        o.Status,
		NewArticles:   o.ItemsImported,
		TotalArticles: o.ItemsFound,
	}
	if o.Source != nil {
		result.SourceID = o.Source.ID
	}
	if len(o.Errors) > 0 {
		result.Error = o.Errors[0]
	}
	return result
}
