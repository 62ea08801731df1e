package sync

import (
	"context"

	"contentsync/app/database"
)

// Fetcher retrieves a remote feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Prober performs the lightweight existence check used by archive
// detection. Gone reports true only for an explicit not-found or gone
// response; transport errors come back as errors, never as gone.
type Prober interface {
	Gone(ctx context.Context, url string) (bool, error)
}

// OwnershipVerifier is the out-of-band ownership check collaborator. The
// pipeline only ingests sources with a verified result.
type OwnershipVerifier interface {
	IsOwnershipVerified(sourceID string) (bool, error)
}

var _ OwnershipVerifier = (*RecordedVerifier)(nil)

// RecordedVerifier trusts the verification state recorded on the source
// row, which the external ownership check maintains.
type RecordedVerifier struct {
	sources database.SourceRepository
}

func NewRecordedVerifier(sources database.SourceRepository) *RecordedVerifier {
	return &RecordedVerifier{sources: sources}
}

func (v *RecordedVerifier) IsOwnershipVerified(sourceID string) (bool, error) {
	source, err := v.sources.GetSource(sourceID)
	if err != nil {
		return false, err
	}
	return source != nil && source.Verification == database.VerificationVerified, nil
}
