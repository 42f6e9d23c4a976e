package memory

import (
	"context"
	"sync"

	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE
// ══════════════════════════════════════════════════════════════════════════════

type progressKey struct {
	userID string
	unitID string
}

// ProgressStore implements progress.Store in memory.
//
// Atomicity mirrors the postgres implementation: a single mutex is held
// across the record transition and the XP credit, so for any
// (userID, unitID) pair exactly one concurrent CompleteUnit call performs
// the credit, and every losing racer observes account state that already
// includes it.
type ProgressStore struct {
	mu       sync.Mutex
	records  map[progressKey]*progress.Record
	accounts *XPAccountRepository
	anchor   timeutil.WeekAnchor
}

// NewProgressStore creates a progress store backed by the given account
// repository.
func NewProgressStore(accounts *XPAccountRepository, anchor timeutil.WeekAnchor) *ProgressStore {
	return &ProgressStore{
		records:  make(map[progressKey]*progress.Record),
		accounts: accounts,
		anchor:   anchor,
	}
}

// CompleteUnit atomically records a completion and credits the unit's XP.
func (s *ProgressStore) CompleteUnit(ctx context.Context, params progress.CompleteParams) (*progress.CompleteResult, error) {
	key := progressKey{userID: params.UserID, unitID: params.UnitID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.records[key]; done {
		account, err := s.accounts.snapshot(params.UserID)
		if err != nil {
			return nil, err
		}
		return &progress.CompleteResult{AlreadyCompleted: true, Account: account}, nil
	}

	record, err := progress.NewRecord(params.RecordID, params.UserID, params.UnitID, params.CompletedAt)
	if err != nil {
		return nil, err
	}

	// Credit first, record second: a failed credit leaves no record behind,
	// so the completion stays retryable.
	account, err := s.accounts.mutate(params.UserID, func(a *xp.Account) error {
		return a.Credit(xp.XP(params.XPReward), s.anchor, params.CompletedAt)
	})
	if err != nil {
		return nil, err
	}
	s.records[key] = record

	return &progress.CompleteResult{AlreadyCompleted: false, Account: account}, nil
}

// IsCompleted reports whether the user has completed the unit.
func (s *ProgressStore) IsCompleted(ctx context.Context, userID, unitID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, done := s.records[progressKey{userID: userID, unitID: unitID}]
	return done, nil
}

// CompletedUnitIDs returns which of the given units the user has completed.
func (s *ProgressStore) CompletedUnitIDs(ctx context.Context, userID string, unitIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := make(map[string]bool, len(unitIDs))
	for _, unitID := range unitIDs {
		if _, done := s.records[progressKey{userID: userID, unitID: unitID}]; done {
			completed[unitID] = true
		}
	}
	return completed, nil
}
