package registry

import (
	"context"
	"sync"

	"certledger/internal/domain"
	dErrors "certledger/pkg/domain-errors"
)

// MemoryStore keeps accounts in process. One lock covers both the primary
// map and the role index so every mutation is atomic, mirroring the
// substrate's serialized execution. Intentionally favors clarity over
// performance.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	// order preserves registration order for deterministic listings.
	order []string
	// byRole is the derived role → identities index, maintained alongside
	// the primary write.
	byRole map[domain.Role][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		byRole:   make(map[domain.Role][]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Identity]; ok {
		return dErrors.New(dErrors.CodeAlreadyExists, "identity already registered")
	}
	s.accounts[account.Identity] = account
	s.order = append(s.order, account.Identity)
	s.byRole[account.Role] = append(s.byRole[account.Role], account.Identity)
	return nil
}

func (s *MemoryStore) FindByIdentity(_ context.Context, identity string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[identity]; ok {
		return account, nil
	}
	return domain.Account{}, dErrors.New(dErrors.CodeNotRegistered, "identity not registered")
}

func (s *MemoryStore) ListByRole(_ context.Context, role domain.Role) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identities := s.byRole[role]
	out := make([]domain.Account, 0, len(identities))
	for _, identity := range identities {
		out = append(out, s.accounts[identity])
	}
	return out, nil
}
