package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

// LatestStore keeps the most recent assessment per request id. An assessment
// replaces the stored one only if its revision is at least as new, so a
// superseded computation is dropped rather than merged.
type LatestStore struct {
	mu          sync.RWMutex
	assessments map[string]domain.Assessment
}

// NewLatestStore returns an empty store.
func NewLatestStore() *LatestStore {
	return &LatestStore{assessments: make(map[string]domain.Assessment)}
}

// Publish stores a and reports whether it was accepted.
func (s *LatestStore) Publish(a domain.Assessment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.assessments[a.RequestID]; ok && cur.Revision > a.Revision {
		return false
	}
	s.assessments[a.RequestID] = a
	return true
}

// Current reports whether a would still be accepted by Publish.
func (s *LatestStore) Current(a domain.Assessment) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur, ok := s.assessments[a.RequestID]
	return !ok || cur.Revision <= a.Revision
}

// Get returns the latest assessment for a request id.
func (s *LatestStore) Get(requestID string) (domain.Assessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[requestID]
	return a, ok
}

// PublishingLoader forwards assessments to an inner loader and records them in
// a LatestStore. Assessments superseded by a newer revision, either already in
// the store or later in the same batch, are dropped before loading.
type PublishingLoader struct {
	inner   BatchLoader
	store   *LatestStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublishingLoader wraps inner with supersession filtering.
func NewPublishingLoader(inner BatchLoader, store *LatestStore, metrics *observability.Metrics, logger *slog.Logger) *PublishingLoader {
	return &PublishingLoader{inner: inner, store: store, metrics: metrics, logger: logger}
}

// LoadBatch drops superseded assessments, loads the rest through the inner
// loader, and records them in the store. A newer revision published while the
// inner load was in flight wins in the store; the stale write is counted.
func (l *PublishingLoader) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	newest := make(map[string]int64, len(assessments))
	for _, a := range assessments {
		if rev, ok := newest[a.RequestID]; !ok || a.Revision > rev {
			newest[a.RequestID] = a.Revision
		}
	}

	current := make([]domain.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Revision < newest[a.RequestID] || !l.store.Current(a) {
			l.metrics.SupersededDropped.Inc()
			l.logger.Info("dropping superseded assessment", "request_id", a.RequestID, "revision", a.Revision)
			continue
		}
		current = append(current, a)
	}
	if len(current) == 0 {
		return nil
	}

	if err := l.inner.LoadBatch(ctx, current); err != nil {
		return err
	}
	for _, a := range current {
		if !l.store.Publish(a) {
			l.metrics.SupersededAfterLoad.Inc()
			l.logger.Warn("assessment superseded during load", "request_id", a.RequestID, "revision", a.Revision)
		}
	}
	return nil
}
