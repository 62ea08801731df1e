package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo handles database operations for imported items.
type ItemRepo struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = `id, source_id, account_id, url, content_hash,
	COALESCE(title, ''), COALESCE(snippet, ''), body, published_at,
	thumbnail_url, status, COALESCE(origin_name, ''), auto_imported,
	synced_at, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*ImportedItem, error) {
	var item ImportedItem
	err := row.Scan(
		&item.ID, &item.SourceID, &item.AccountID, &item.URL, &item.ContentHash,
		&item.Title, &item.Snippet, &item.Body, &item.PublishedAt,
		&item.ThumbnailURL, &item.Status, &item.OriginName, &item.AutoImported,
		&item.SyncedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByFingerprint retrieves an account's item by content fingerprint.
func (r *ItemRepo) GetItemByFingerprint(accountID, contentHash string) (*ImportedItem, error) {
	row := r.db.QueryRow(`
		SELECT `+itemColumns+`
		FROM imported_items
		WHERE account_id = $1 AND content_hash = $2
		LIMIT 1
	`, accountID, contentHash)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by fingerprint: %w", err)
	}

	return item, nil
}

// GetKnownURLs returns every canonical URL already imported for a source,
// regardless of status. Archived items stay known so a reappearing URL
// updates rather than duplicates.
func (r *ItemRepo) GetKnownURLs(sourceID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(`
		SELECT url FROM imported_items WHERE source_id = $1
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get known URLs: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL row: %w", err)
		}
		known[url] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URL rows: %w", err)
	}

	return known, nil
}

// GetActiveItemsSince returns a source's active items published at or
// after the given horizon, the candidate set for archive detection.
func (r *ItemRepo) GetActiveItemsSince(sourceID string, horizon time.Time) ([]ImportedItem, error) {
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM imported_items
		WHERE source_id = $1
		  AND status = 'active'
		  AND published_at IS NOT NULL
		  AND published_at >= $2
		ORDER BY published_at DESC
	`, sourceID, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to get active items: %w", err)
	}
	defer rows.Close()

	var items []ImportedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// GetItemCount returns the total number of imported items.
func (r *ItemRepo) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM imported_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// CountSourceItems returns the number of items attributed to a source.
func (r *ItemRepo) CountSourceItems(sourceID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM imported_items WHERE source_id = $1", sourceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count source items: %w", err)
	}
	return count, nil
}

// UpsertItem inserts a new item or refreshes the existing record for the
// same (account, canonical URL) pair. The write is idempotent: overlapping
// syncs of the same source converge on one record. Body and publish time
// are only overwritten by non-null values, and status is left untouched.
func (r *ItemRepo) UpsertItem(item ImportedItem) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO imported_items (
			source_id, account_id, url, content_hash, title, snippet, body,
			published_at, thumbnail_url, origin_name, auto_imported, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (account_id, url) DO UPDATE SET
			source_id = COALESCE(imported_items.source_id, EXCLUDED.source_id),
			title = EXCLUDED.title,
			snippet = EXCLUDED.snippet,
			body = COALESCE(EXCLUDED.body, imported_items.body),
			published_at = COALESCE(EXCLUDED.published_at, imported_items.published_at),
			thumbnail_url = COALESCE(EXCLUDED.thumbnail_url, imported_items.thumbnail_url),
			origin_name = EXCLUDED.origin_name,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()
		RETURNING id
	`, item.SourceID, item.AccountID, item.URL, item.ContentHash, item.Title,
		item.Snippet, item.Body, item.PublishedAt, item.ThumbnailURL,
		item.OriginName, item.AutoImported, item.SyncedAt).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to upsert item: %w", err)
	}

	return id, nil
}

// MarkArchived transitions an item to source_archived. Items are never
// hard-deleted by the pipeline.
func (r *ItemRepo) MarkArchived(itemID string) error {
	_, err := r.db.Exec(`
		UPDATE imported_items
		SET status = 'source_archived', updated_at = NOW()
		WHERE id = $1
	`, itemID)

	if err != nil {
		return fmt.Errorf("failed to mark item archived: %w", err)
	}

	return nil
}
