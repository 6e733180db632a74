package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/leonfocus/leonfocus/pkg/models"
)

// ChannelMessages is the chat collection channel.
const ChannelMessages = "messages"

const defaultReconnectDelay = 3 * time.Second

// ConnState is the reconciler's connection state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// Reconciler merges the server-pushed event stream into a local ordered chat
// view. A message can arrive twice, once as the optimistic local echo and
// once as a push; the view keeps exactly one copy per id, ordered by creation
// time, and never drops a message.
//
// Connection failures schedule a single reconnect attempt after a fixed
// delay; scheduling is idempotent and teardown cancels everything, making
// stray callbacks after Close no-ops.
type Reconciler struct {
	mu       sync.Mutex
	source   EventSource
	channels []string
	clock    clockwork.Clock
	delay    time.Duration
	logger   *slog.Logger

	ctx    context.Context
	state  ConnState
	cancel func()
	retry  clockwork.Timer
	closed bool
	gen    uint64 // bumped per connection attempt; stale callbacks carry an old value

	view   []models.ChatMessage
	seen   map[string]struct{}
	unseen int

	onMessage func(models.ChatMessage)
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconnectDelay overrides the fixed delay before a reconnect attempt.
func WithReconnectDelay(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.delay = d }
}

// WithReconcilerClock swaps the clock driving the reconnect timer.
func WithReconcilerClock(clock clockwork.Clock) ReconcilerOption {
	return func(r *Reconciler) { r.clock = clock }
}

// WithMessageHook registers a callback invoked (outside the lock) for every
// message newly merged into the view.
func WithMessageHook(fn func(models.ChatMessage)) ReconcilerOption {
	return func(r *Reconciler) { r.onMessage = fn }
}

// WithReconcilerLogger overrides the logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = logger }
}

// NewReconciler creates a Reconciler subscribed to the chat channel.
func NewReconciler(source EventSource, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		source:   source,
		channels: []string{ChannelMessages},
		clock:    clockwork.NewRealClock(),
		delay:    defaultReconnectDelay,
		logger:   slog.Default(),
		state:    StateDisconnected,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect opens the subscription. The context is retained for reconnect
// attempts and should outlive the reconciler's useful life.
func (r *Reconciler) Connect(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.ctx = ctx
	r.state = StateConnecting
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	// Subscribe runs outside the lock; its read pump may already be live and
	// can report an error for this very attempt before we re-lock below.
	cancel, err := r.source.Subscribe(ctx, r.channels, r.handleEvent, func(err error) {
		r.handleError(gen, err)
	})

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}
	if err != nil {
		r.state = StateReconnecting
		r.scheduleReconnectLocked()
		r.mu.Unlock()
		r.logger.Warn("realtime subscribe failed, reconnect scheduled", "error", err)
		return
	}
	if gen != r.gen || r.state != StateConnecting {
		// The subscription already broke (or a newer attempt superseded this
		// one) while we were unlocked. The retry it armed stays armed; do not
		// promote a dead connection to connected.
		r.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}
	r.state = StateConnected
	r.cancel = cancel
	r.mu.Unlock()
}

// State returns the connection state.
func (r *Reconciler) State() ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close tears the reconciler down: the pending reconnect timer is cancelled
// synchronously and the subscription handle released. Safe to call twice.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.state = StateDisconnected
	if r.retry != nil {
		r.retry.Stop()
		r.retry = nil
	}
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AppendLocal merges the caller's own just-sent message into the view as an
// optimistic echo. When the push copy arrives later it deduplicates against
// this entry.
func (r *Reconciler) AppendLocal(msg models.ChatMessage) {
	r.ingest(msg, false)
}

// Messages returns a copy of the merged view in creation order.
func (r *Reconciler) Messages() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChatMessage, len(r.view))
	copy(out, r.view)
	return out
}

// Unseen returns how many merged messages arrived since the last MarkSeen.
// This replaces the near-bottom autoscroll heuristic: the UI decides what to
// do with the count, the view itself never drops anything.
func (r *Reconciler) Unseen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unseen
}

// MarkSeen resets the unseen counter.
func (r *Reconciler) MarkSeen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unseen = 0
}

func (r *Reconciler) handleEvent(ev Event) {
	if ev.Channel != ChannelMessages || !isCreate(ev.Events) {
		return
	}
	var msg models.ChatMessage
	if err := json.Unmarshal(ev.Payload, &msg); err != nil {
		r.logger.Warn("failed to decode pushed chat message", "error", err)
		return
	}
	if msg.ID == "" {
		return
	}
	r.ingest(msg, true)
}

// handleError reacts to a broken subscription. Errors carrying a stale
// generation belong to an attempt that has since been superseded and are
// ignored; the current connection is not torn down for them.
func (r *Reconciler) handleError(gen uint64, err error) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.state = StateReconnecting
	r.cancel = nil
	r.scheduleReconnectLocked()
	r.mu.Unlock()
	r.logger.Warn("realtime connection lost, reconnect scheduled", "error", err)
}

// scheduleReconnectLocked arms the retry timer, cancelling any previously
// scheduled attempt first so at most one is ever pending.
func (r *Reconciler) scheduleReconnectLocked() {
	if r.retry != nil {
		r.retry.Stop()
	}
	r.retry = r.clock.AfterFunc(r.delay, r.reconnect)
}

func (r *Reconciler) reconnect() {
	r.mu.Lock()
	if r.closed || r.state != StateReconnecting {
		r.mu.Unlock()
		return
	}
	ctx := r.ctx
	r.mu.Unlock()
	r.Connect(ctx)
}

// ingest merges one message into the view if its id is unseen, keeping the
// view ordered by CreatedAt (stable for equal timestamps).
func (r *Reconciler) ingest(msg models.ChatMessage, countUnseen bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if _, dup := r.seen[msg.ID]; dup {
		r.mu.Unlock()
		return
	}
	r.seen[msg.ID] = struct{}{}

	// Find the insertion point scanning from the tail; pushes usually arrive
	// in order so this is a single comparison in the common case.
	i := len(r.view)
	for i > 0 && r.view[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	r.view = append(r.view, models.ChatMessage{})
	copy(r.view[i+1:], r.view[i:])
	r.view[i] = msg

	if countUnseen {
		r.unseen++
	}
	cb := r.onMessage
	r.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}
