package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP ACCOUNT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// XPAccountRepository implements xp.Repository in memory. The progress store
// shares this repository so that completions and reads see the same accounts.
type XPAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*xp.Account
}

// NewXPAccountRepository creates an empty in-memory account repository.
func NewXPAccountRepository() *XPAccountRepository {
	return &XPAccountRepository{accounts: make(map[string]*xp.Account)}
}

// GetByUserID returns a copy of the user's account.
func (r *XPAccountRepository) GetByUserID(ctx context.Context, userID string) (*xp.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[userID]
	if !ok {
		return nil, shared.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Create creates a new account.
func (r *XPAccountRepository) Create(ctx context.Context, account *xp.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.UserID]; exists {
		return shared.ErrAlreadyExists
	}
	r.accounts[account.UserID] = account.Clone()
	return nil
}

// List returns a snapshot of all accounts ordered by user ID.
func (r *XPAccountRepository) List(ctx context.Context) ([]*xp.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*xp.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].UserID < accounts[j].UserID
	})
	return accounts, nil
}

// mutate runs fn against the live account under the write lock. Used by the
// progress store to apply credits atomically with the completion record.
func (r *XPAccountRepository) mutate(userID string, fn func(*xp.Account) error) (*xp.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[userID]
	if !ok {
		return nil, shared.ErrAccountNotFound
	}
	if err := fn(account); err != nil {
		return nil, err
	}
	return account.Clone(), nil
}

// snapshot returns a copy of the account without mutating it.
func (r *XPAccountRepository) snapshot(userID string) (*xp.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[userID]
	if !ok {
		return nil, shared.ErrAccountNotFound
	}
	return account.Clone(), nil
}
