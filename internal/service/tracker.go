package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
)

// Tracker records in-flight generation requests so duplicates fail fast
// instead of queueing.
type Tracker struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[string]struct{})}
}

// Begin claims key. It returns ErrBusy if key is already claimed; otherwise
// the returned func releases it.
func (t *Tracker) Begin(key string) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inFlight[key]; ok {
		return nil, ErrBusy
	}
	t.inFlight[key] = struct{}{}
	return func() {
		t.mu.Lock()
		delete(t.inFlight, key)
		t.mu.Unlock()
	}, nil
}

// Busy reports whether key is claimed.
func (t *Tracker) Busy(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inFlight[key]
	return ok
}

// SummaryKey identifies a document summary request.
func SummaryKey(documentID uuid.UUID) string {
	return "summary:" + documentID.String()
}

// MaterialKey identifies a material request for one document and kind.
func MaterialKey(documentID uuid.UUID, kind domain.MaterialKind) string {
	return "material:" + documentID.String() + ":" + string(kind)
}
