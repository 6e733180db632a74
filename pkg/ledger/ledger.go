package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/leonfocus/leonfocus/pkg/events"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 250 * time.Millisecond
)

// Ledger is the single writer for balance and inventory. Every mutation is a
// read-merge-write-confirm sequence against the remote preference document:
// the store offers no transactions, so re-reading the authority immediately
// before each write decision is the correctness mechanism.
type Ledger struct {
	prefs      storage.PrefsStore
	events     events.Publisher
	clock      clockwork.Clock
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock swaps the clock used for retry backoff.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithPublisher wires the audit feed for confirmed mutations.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.events = p }
}

// WithRetryPolicy overrides the bounded fixed-backoff retry policy.
func WithRetryPolicy(maxRetries int, backoff time.Duration) Option {
	return func(l *Ledger) {
		l.maxRetries = maxRetries
		l.backoff = backoff
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a Ledger backed by the given preference store.
func New(prefs storage.PrefsStore, opts ...Option) *Ledger {
	l := &Ledger{
		prefs:      prefs,
		events:     &events.NoOpPublisher{},
		clock:      clockwork.NewRealClock(),
		logger:     slog.Default(),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Read retrieves the authoritative account, retrying transient store faults.
func (l *Ledger) Read(ctx context.Context, userID string) (*models.Account, error) {
	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}
		account, err := l.prefs.GetAccount(ctx, userID)
		if err != nil {
			if !transient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		return account, nil
	}
	return nil, fmt.Errorf("read for user %s exhausted retries: %w", userID, lastErr)
}

// Award adds a positive amount to the user's balance and returns the
// confirmed account. Callers treat a failure here as non-fatal degradation:
// the timer must keep advancing even when the reward cannot be granted.
func (l *Ledger) Award(ctx context.Context, userID string, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("award amount must be positive, got %d", amount)
	}

	confirmed, err := l.commit(ctx, userID, func(account *models.Account) error {
		account.Balance += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, &models.LedgerEvent{
		UserID:     userID,
		Kind:       models.LedgerEventAward,
		Amount:     amount,
		NewBalance: confirmed.Balance,
	})
	return confirmed, nil
}

// SpendAndUnlock deducts cost from the balance and increments each unlocked
// sticker's count by its multiplicity in unlocks, all in one merge-write.
// The funds check runs against the balance re-read at commit time, never a
// cached one, which closes the stale-balance double-spend within a client.
//
// Two devices that both pass the check before either write lands still race:
// the later merge-write wins and can overwrite the earlier deduction. The
// upstream store exposes no compare-and-swap to prevent this; last write
// observed wins is the accepted semantics.
func (l *Ledger) SpendAndUnlock(ctx context.Context, userID string, cost int64, unlocks []string) (*models.Account, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("spend cost must be positive, got %d", cost)
	}

	confirmed, err := l.commit(ctx, userID, func(account *models.Account) error {
		if account.Balance < cost {
			return fmt.Errorf("balance %d cannot cover cost %d: %w", account.Balance, cost, storage.ErrInsufficientFunds)
		}
		account.Balance -= cost
		if account.Inventory == nil {
			account.Inventory = make(map[string]int64, len(unlocks))
		}
		for _, sticker := range unlocks {
			account.Inventory[sticker]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, &models.LedgerEvent{
		UserID:     userID,
		Kind:       models.LedgerEventSpend,
		Amount:     cost,
		Unlocks:    unlocks,
		NewBalance: confirmed.Balance,
	})
	return confirmed, nil
}

// UpdateTimerSettings overlays new timer settings on the freshly read
// document. Settings writes funnel through the ledger so that every prefs
// mutation in the system follows the same merge-write discipline.
func (l *Ledger) UpdateTimerSettings(ctx context.Context, userID string, settings models.TimerSettings) (*models.Account, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return l.commit(ctx, userID, func(account *models.Account) error {
		account.Timer = settings
		return nil
	})
}

// SaveCurrentPhase persists the phase the user's timer landed on.
func (l *Ledger) SaveCurrentPhase(ctx context.Context, userID string, phase models.Phase) (*models.Account, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("unknown timer phase %q", phase)
	}
	return l.commit(ctx, userID, func(account *models.Account) error {
		account.Timer.CurrentPhase = phase
		return nil
	})
}

// commit runs one read-merge-write-confirm cycle, retrying the whole cycle on
// transient faults before the write lands. A mutate error aborts without
// retry (business rejection). Once the write has landed, only the confirm
// read is retried so the mutation is never applied twice.
func (l *Ledger) commit(ctx context.Context, userID string, mutate func(*models.Account) error) (*models.Account, error) {
	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}

		current, err := l.prefs.GetAccount(ctx, userID)
		if err != nil {
			if !transient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		merged := current.Clone()
		if err := mutate(merged); err != nil {
			return nil, err
		}
		merged.UpdatedAt = l.clock.Now().UTC()

		if _, err := l.prefs.PutAccount(ctx, merged); err != nil {
			if !transient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		return l.confirm(ctx, userID)
	}
	return nil, fmt.Errorf("commit for user %s exhausted retries: %w", userID, lastErr)
}

// confirm re-reads the document after a successful write. If it keeps
// failing, the write may still have landed remotely; the optimistic value
// must not be trusted until a later read succeeds.
func (l *Ledger) confirm(ctx context.Context, userID string) (*models.Account, error) {
	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}
		confirmed, err := l.prefs.GetAccount(ctx, userID)
		if err != nil {
			if !transient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		return confirmed, nil
	}
	return nil, fmt.Errorf("confirm read for user %s exhausted retries: %w", userID, lastErr)
}

func (l *Ledger) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.clock.After(l.backoff):
		return nil
	}
}

func (l *Ledger) publish(ctx context.Context, event *models.LedgerEvent) {
	event.EventID = uuid.New().String()
	event.Timestamp = l.clock.Now().UTC()
	if err := l.events.PublishLedgerEvent(ctx, event); err != nil {
		l.logger.Warn("ledger event publish failed",
			"user_id", event.UserID,
			"kind", event.Kind,
			"error", err,
		)
	}
}

func transient(err error) bool {
	return errors.Is(err, storage.ErrStoreUnavailable)
}
