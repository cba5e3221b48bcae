package staff

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps accounts in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   uint
	accounts map[string]Account
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, accounts: make(map[string]Account)}
}

func (r *MemoryRepository) Create(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return fmt.Errorf("failed to create account: username %q already exists", account.Username)
	}
	now := time.Now()
	account.ID = r.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	r.nextID++
	r.accounts[account.Username] = *account
	return nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindAll(_ context.Context) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
