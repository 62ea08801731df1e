package sync

import (
	"context"
	"fmt"
	"time"

	"contentsync/app/database"
	"contentsync/app/feed"
)

type fakeSourceRepo struct {
	sources     map[string]*database.ContentSource
	eligible    []database.ContentSource
	statuses    []string
	finishCalls []string
	pushTouched int
}

func newFakeSourceRepo(sources ...*database.ContentSource) *fakeSourceRepo {
	repo := &fakeSourceRepo{sources: map[string]*database.ContentSource{}}
	for _, source := range sources {
		repo.sources[source.ID] = source
		if source.Eligible() {
			repo.eligible = append(repo.eligible, *source)
		}
	}
	return repo
}

func (r *fakeSourceRepo) GetSource(id string) (*database.ContentSource, error) {
	return r.sources[id], nil
}

func (r *fakeSourceRepo) GetSourceByURL(accountID, url string) (*database.ContentSource, error) {
	for _, source := range r.sources {
		if source.AccountID == accountID && source.URL == url {
			return source, nil
		}
	}
	return nil, nil
}

func (r *fakeSourceRepo) GetEligibleSources() ([]database.ContentSource, error) {
	return r.eligible, nil
}

func (r *fakeSourceRepo) GetSourceCount() (int, error) {
	return len(r.sources), nil
}

func (r *fakeSourceRepo) CreateSource(source database.ContentSource) (string, error) {
	r.sources[source.ID] = &source
	return source.ID, nil
}

func (r *fakeSourceRepo) UpsertSeedSource(accountID, kind, url, name, pushSecret string) (string, bool, error) {
	return "", false, nil
}

func (r *fakeSourceRepo) UpdateSyncStatus(id, status string) error {
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeSourceRepo) FinishSync(id, status string, itemCount int) error {
	r.statuses = append(r.statuses, status)
	r.finishCalls = append(r.finishCalls, id+":"+status)
	return nil
}

func (r *fakeSourceRepo) TouchLastPush(id string) error {
	r.pushTouched++
	return nil
}

type fakeItemRepo struct {
	seq     int
	records map[string]*database.ImportedItem // by id
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{records: map[string]*database.ImportedItem{}}
}

func (r *fakeItemRepo) GetItemByFingerprint(accountID, contentHash string) (*database.ImportedItem, error) {
	for _, record := range r.records {
		if record.AccountID == accountID && record.ContentHash == contentHash {
			return record, nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) GetKnownURLs(sourceID string) (map[string]struct{}, error) {
	known := map[string]struct{}{}
	for _, record := range r.records {
		if record.SourceID != nil && *record.SourceID == sourceID {
			known[record.URL] = struct{}{}
		}
	}
	return known, nil
}

func (r *fakeItemRepo) GetActiveItemsSince(sourceID string, horizon time.Time) ([]database.ImportedItem, error) {
	var out []database.ImportedItem
	for _, record := range r.records {
		if record.SourceID == nil || *record.SourceID != sourceID {
			continue
		}
		if record.Status != database.ItemStatusActive {
			continue
		}
		if record.PublishedAt == nil || record.PublishedAt.Before(horizon) {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (r *fakeItemRepo) GetItemCount() (int, error) {
	return len(r.records), nil
}

func (r *fakeItemRepo) CountSourceItems(sourceID string) (int, error) {
	count := 0
	for _, record := range r.records {
		if record.SourceID != nil && *record.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (r *fakeItemRepo) UpsertItem(item database.ImportedItem) (string, error) {
	for id, record := range r.records {
		if record.AccountID == item.AccountID && record.URL == item.URL {
			item.ID = id
			item.Status = record.Status
			r.records[id] = &item
			return id, nil
		}
	}
	r.seq++
	item.ID = fmt.Sprintf("item-%d", r.seq)
	r.records[item.ID] = &item
	return item.ID, nil
}

func (r *fakeItemRepo) MarkArchived(itemID string) error {
	record, ok := r.records[itemID]
	if !ok {
		return fmt.Errorf("item not found: %s", itemID)
	}
	record.Status = database.ItemStatusSourceArchived
	return nil
}

type fakeFetcher struct {
	data map[string][]byte
	errs map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.data[url], nil
}

type fakeProber struct {
	gone  map[string]bool
	errs  map[string]error
	calls []string
}

func (p *fakeProber) Gone(_ context.Context, url string) (bool, error) {
	p.calls = append(p.calls, url)
	if err := p.errs[url]; err != nil {
		return false, err
	}
	return p.gone[url], nil
}

type stubParser struct {
	items []feed.Item
}

func (p *stubParser) Run([]byte) []feed.Item {
	return p.items
}

type noopArchiver struct {
	calls int
}

func (a *noopArchiver) Run(context.Context, string, []feed.Item) {
	a.calls++
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, accountID, kind, message string, _ map[string]any) {
	n.events = append(n.events, kind)
}

func (n *recordingNotifier) Close() error {
	return nil
}

type stubVerifier struct {
	verified map[string]bool
}

func (v *stubVerifier) IsOwnershipVerified(sourceID string) (bool, error) {
	return v.verified[sourceID], nil
}
