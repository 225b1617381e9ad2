package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"certledger/internal/domain"
	dErrors "certledger/pkg/domain-errors"
)

// MemoryStore keeps certificates in process. One lock covers the primary map
// and both derived indexes, so every mutation is atomic the way the
// substrate serializes transactions. Intentionally favors clarity over
// performance.
type MemoryStore struct {
	mu    sync.RWMutex
	certs map[string]domain.Certificate
	// byHolder and pending are the derived indexes, maintained alongside
	// the primary write under the same lock.
	byHolder map[string][]string
	pending  map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		certs:    make(map[string]domain.Certificate),
		byHolder: make(map[string][]string),
		pending:  make(map[string]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, cert domain.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[cert.ID]; ok {
		return dErrors.New(dErrors.CodeAlreadyExists, "certificate id already exists")
	}
	s.certs[cert.ID] = cert
	s.byHolder[cert.HolderIdentity] = append(s.byHolder[cert.HolderIdentity], cert.ID)
	if cert.Status == domain.StatusPendingReview {
		s.pending[cert.ID] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cert, ok := s.certs[id]; ok {
		return cert, nil
	}
	return domain.Certificate{}, dErrors.New(dErrors.CodeNotFound, "certificate not found")
}

func (s *MemoryStore) ListByHolder(_ context.Context, holder string) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byHolder[holder]
	out := make([]domain.Certificate, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.certs[id])
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListPending(_ context.Context) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Certificate, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, s.certs[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt != out[j].IssuedAt {
			return out[i].IssuedAt < out[j].IssuedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to domain.Status, reviewedBy string, reviewedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cert, ok := s.certs[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "certificate not found")
	}
	if cert.Status != from {
		return dErrors.New(dErrors.CodeInvalidTransition, "certificate already resolved")
	}
	cert.Status = to
	cert.ReviewedBy = reviewedBy
	cert.ReviewedAt = reviewedAt
	s.certs[id] = cert
	delete(s.pending, id)
	return nil
}
