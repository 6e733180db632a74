package booster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
)

// UnitCost is the price of one booster pack in microLeons.
const UnitCost int64 = 100

// Pack count bounds for a single purchase.
const (
	MinPacks = 1
	MaxPacks = 10
)

// ErrInvalidPackCount is returned when the requested pack count is outside
// the 1..10 range.
var ErrInvalidPackCount = errors.New("pack count must be between 1 and 10")

// ErrEmptyCatalog is returned when there is nothing to draw from.
var ErrEmptyCatalog = errors.New("sticker catalog is empty")

// Spender is the slice of the ledger the engine needs.
type Spender interface {
	Read(ctx context.Context, userID string) (*models.Account, error)
	SpendAndUnlock(ctx context.Context, userID string, cost int64, unlocks []string) (*models.Account, error)
}

// OpenResult reports one completed batch purchase.
type OpenResult struct {
	// Drawn lists every sticker drawn, with repetition, one per pack.
	Drawn []models.Sticker
	// NewlyUnlocked names the stickers that went from locked to owned in this
	// batch; these get the one-time reveal cue. Already-owned draws are
	// incremented but not re-announced.
	NewlyUnlocked []string
	// Account is the confirmed post-purchase account.
	Account *models.Account
}

// Engine opens booster packs: it authorizes the whole batch, draws uniformly
// from the catalog, and commits cost and unlocks through a single ledger
// call so a partial failure can never charge without delivering or deliver
// without charging.
type Engine struct {
	catalog storage.CatalogStore
	ledger  Spender
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects a seeded source, used by tests for repeatable draws.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine.
func New(catalog storage.CatalogStore, ledger Spender, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		ledger:  ledger,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open purchases and opens packCount booster packs for a user.
//
// The draw is not speculative: the balance is checked against a fresh read
// before any randomness is consumed, and the commit re-checks it again. A
// failed commit aborts the whole batch with no balance or inventory change.
func (e *Engine) Open(ctx context.Context, userID string, packCount int) (*OpenResult, error) {
	if packCount < MinPacks || packCount > MaxPacks {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPackCount, packCount)
	}
	cost := int64(packCount) * UnitCost

	// Authorization first: a user who cannot afford the batch never draws.
	account, err := e.ledger.Read(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read account before draw: %w", err)
	}
	if account.Balance < cost {
		return nil, fmt.Errorf("balance %d cannot cover %d packs at %d each: %w",
			account.Balance, packCount, UnitCost, storage.ErrInsufficientFunds)
	}

	catalog, err := e.catalog.ListStickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sticker catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	// One uniform independent draw per pack; duplicates are how inventory
	// counts climb past 1.
	drawn := make([]models.Sticker, packCount)
	names := make([]string, packCount)
	for i := range drawn {
		drawn[i] = catalog[e.intn(len(catalog))]
		names[i] = drawn[i].Name
	}

	confirmed, err := e.ledger.SpendAndUnlock(ctx, userID, cost, names)
	if err != nil {
		return nil, err
	}

	// A sticker is newly unlocked when it was absent from the pre-purchase
	// snapshot. Dedupe so a double draw of a fresh sticker announces once.
	var newly []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if account.OwnedCount(name) == 0 {
			newly = append(newly, name)
		}
	}

	e.logger.Info("booster packs opened",
		"user_id", userID,
		"packs", packCount,
		"cost", cost,
		"newly_unlocked", len(newly),
	)

	return &OpenResult{
		Drawn:         drawn,
		NewlyUnlocked: newly,
		Account:       confirmed,
	}, nil
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rng != nil {
		return e.rng.Intn(n)
	}
	return rand.Intn(n)
}
