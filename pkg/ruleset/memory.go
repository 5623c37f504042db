package ruleset

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory ruleset store. It backs the file source,
// which replaces the full set atomically on reload, and is also the store
// of choice in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	rulesets map[uuid.UUID]*Ruleset
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rulesets: make(map[uuid.UUID]*Ruleset)}
}

func (s *MemoryStore) Resolve(ctx context.Context, tenantID, rulesetID uuid.UUID) (*Ruleset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.rulesets[rulesetID]
	if !ok || rs.TenantID != tenantID {
		return nil, &NotFoundError{TenantID: tenantID, RulesetID: rulesetID}
	}
	cp := *rs
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, rs *Ruleset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rs
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	s.rulesets[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Ruleset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Ruleset
	for _, rs := range s.rulesets {
		if rs.TenantID == tenantID {
			cp := *rs
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ReplaceAll swaps the full ruleset map. Used by the file source so that a
// reload is observed atomically.
func (s *MemoryStore) ReplaceAll(rulesets []*Ruleset) {
	next := make(map[uuid.UUID]*Ruleset, len(rulesets))
	for _, rs := range rulesets {
		cp := *rs
		next[cp.ID] = &cp
	}

	s.mu.Lock()
	s.rulesets = next
	s.mu.Unlock()
}

func (s *MemoryStore) Close() error { return nil }
