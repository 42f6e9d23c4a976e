package memory

import (
	"context"
	"sync"

	"github.com/naluwan/wsa/internal/domain/access"
	"github.com/naluwan/wsa/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITLEMENT STORE
// ══════════════════════════════════════════════════════════════════════════════

// EntitlementStore implements access.EntitlementStore in memory.
type EntitlementStore struct {
	mu    sync.RWMutex
	owned map[string]map[catalog.CourseCode]struct{} // userID -> codes
}

// NewEntitlementStore creates an empty in-memory entitlement store.
func NewEntitlementStore() *EntitlementStore {
	return &EntitlementStore{
		owned: make(map[string]map[catalog.CourseCode]struct{}),
	}
}

// Grant records ownership of a course. Repeated grants are no-ops.
func (s *EntitlementStore) Grant(userID string, code catalog.CourseCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes, ok := s.owned[userID]
	if !ok {
		codes = make(map[catalog.CourseCode]struct{})
		s.owned[userID] = codes
	}
	codes[code] = struct{}{}
}

// GetEntitlements returns the set of courses the user owns. Unknown users
// get an empty set.
func (s *EntitlementStore) GetEntitlements(ctx context.Context, userID string) (access.EntitlementSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := access.NewEntitlementSet()
	for code := range s.owned[userID] {
		set[code] = struct{}{}
	}
	return set, nil
}
