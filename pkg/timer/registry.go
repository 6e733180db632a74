package timer

import (
	"context"
	"sync"

	"github.com/leonfocus/leonfocus/pkg/models"
)

// AccountReader loads the account whose stored settings seed a new machine.
type AccountReader interface {
	Read(ctx context.Context, userID string) (*models.Account, error)
}

// Registry owns at most one timer machine per user for the lifetime of the
// process. Machines are created lazily from the user's stored settings.
type Registry struct {
	mu       sync.Mutex
	machines map[string]*Machine
	accounts AccountReader
	opts     []Option
}

// NewRegistry creates a Registry. The options are applied to every machine it
// creates.
func NewRegistry(accounts AccountReader, opts ...Option) *Registry {
	return &Registry{
		machines: make(map[string]*Machine),
		accounts: accounts,
		opts:     opts,
	}
}

// Get returns the user's machine, creating it from stored settings on first
// use.
func (r *Registry) Get(ctx context.Context, userID string) (*Machine, error) {
	r.mu.Lock()
	if m, ok := r.machines[userID]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	// Load outside the lock; the store read can be slow.
	account, err := r.accounts.Read(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.machines[userID]; ok {
		// Lost the race to another request; keep the first machine.
		return m, nil
	}
	m := New(userID, account.Timer, r.opts...)
	r.machines[userID] = m
	return m, nil
}

// StopAll tears down every machine. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.machines {
		m.Stop()
	}
}
