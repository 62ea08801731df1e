package database

import (
	"database/sql"
	"fmt"
)

var _ SourceRepository = (*SourceRepo)(nil)

// SourceRepo handles database operations for content sources.
type SourceRepo struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, account_id, kind, url, COALESCE(name, ''), active,
	verification, sync_status, last_synced_at, last_push_at,
	COALESCE(push_secret, ''), item_count, created_at, updated_at`

func scanSource(row interface{ Scan(...any) error }) (*ContentSource, error) {
	var source ContentSource
	err := row.Scan(
		&source.ID, &source.AccountID, &source.Kind, &source.URL, &source.Name,
		&source.Active, &source.Verification, &source.SyncStatus,
		&source.LastSyncedAt, &source.LastPushAt, &source.PushSecret,
		&source.ItemCount, &source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// GetSource retrieves a content source by its identifier.
func (r *SourceRepo) GetSource(id string) (*ContentSource, error) {
	row := r.db.QueryRow(`
		SELECT `+sourceColumns+`
		FROM content_sources
		WHERE id = $1
	`, id)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return source, nil
}

// GetSourceByURL retrieves a content source by owning account and origin URL.
func (r *SourceRepo) GetSourceByURL(accountID, url string) (*ContentSource, error) {
	row := r.db.QueryRow(`
		SELECT `+sourceColumns+`
		FROM content_sources
		WHERE account_id = $1 AND url = $2
	`, accountID, url)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source by URL: %w", err)
	}

	return source, nil
}

// GetEligibleSources returns sources that are active and verified, the only
// ones the pipeline ingests.
func (r *SourceRepo) GetEligibleSources() ([]ContentSource, error) {
	rows, err := r.db.Query(`
		SELECT ` + sourceColumns + `
		FROM content_sources
		WHERE active AND verification = 'verified'
		ORDER BY COALESCE(last_synced_at, '1970-01-01'::timestamptz)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible sources: %w", err)
	}
	defer rows.Close()

	var sources []ContentSource
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

// GetSourceCount returns the total number of registered sources.
func (r *SourceRepo) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content_sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// CreateSource registers a new content source. Verification starts pending
// unless the caller says otherwise.
func (r *SourceRepo) CreateSource(source ContentSource) (string, error) {
	if source.Verification == "" {
		source.Verification = VerificationPending
	}

	var id string
	err := r.db.QueryRow(`
		INSERT INTO content_sources (account_id, kind, url, name, active, verification, push_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, source.AccountID, source.Kind, source.URL, source.Name, source.Active,
		source.Verification, source.PushSecret).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create source: %w", err)
	}

	return id, nil
}

// UpsertSeedSource registers or updates a source from a seed file. Returns
// the database ID and whether a new row was created. Verification and sync
// state of an existing row are left untouched.
func (r *SourceRepo) UpsertSeedSource(accountID, kind, url, name, pushSecret string) (string, bool, error) {
	existing, err := r.GetSourceByURL(accountID, url)
	if err != nil {
		return "", false, fmt.Errorf("failed to check existing source: %w", err)
	}

	if existing != nil {
		_, err := r.db.Exec(`
			UPDATE content_sources
			SET kind = $2, name = $3, push_secret = $4, updated_at = NOW()
			WHERE id = $1
		`, existing.ID, kind, name, pushSecret)
		if err != nil {
			return "", false, fmt.Errorf("failed to update seed source: %w", err)
		}
		return existing.ID, false, nil
	}

	var id string
	err = r.db.QueryRow(`
		INSERT INTO content_sources (account_id, kind, url, name, push_secret)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, accountID, kind, url, name, pushSecret).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("failed to insert seed source: %w", err)
	}

	return id, true, nil
}

// UpdateSyncStatus sets only the sync state of a source.
func (r *SourceRepo) UpdateSyncStatus(id, status string) error {
	_, err := r.db.Exec(`
		UPDATE content_sources
		SET sync_status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// FinishSync records the terminal state of a sync cycle. A negative
// itemCount leaves the stored count unchanged.
func (r *SourceRepo) FinishSync(id, status string, itemCount int) error {
	_, err := r.db.Exec(`
		UPDATE content_sources
		SET sync_status = $2,
		    last_synced_at = NOW(),
		    item_count = CASE WHEN $3 >= 0 THEN $3 ELSE item_count END,
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, itemCount)

	if err != nil {
		return fmt.Errorf("failed to finish sync: %w", err)
	}

	return nil
}

// TouchLastPush records that a push was received for a source, whether or
// not it carried ingestible content.
func (r *SourceRepo) TouchLastPush(id string) error {
	_, err := r.db.Exec(`
		UPDATE content_sources
		SET last_push_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to touch last push: %w", err)
	}

	return nil
}
