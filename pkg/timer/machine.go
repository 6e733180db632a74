package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/leonfocus/leonfocus/pkg/models"
)

// Reward tiers for completed work sessions. Policy constants, not derived
// from phase durations: a completion landing on the long-break interval
// boundary pays out more than an ordinary one.
const (
	RewardStandard int64 = 50
	RewardInterval int64 = 150
)

const awardTimeout = 30 * time.Second

// State is the sub-state of the current phase.
type State string

const (
	// StateIdle means the countdown is loaded but not running.
	StateIdle State = "idle"
	// StateRunning means the countdown ticks once per second.
	StateRunning State = "running"
	// StatePaused means the countdown is frozen mid-phase.
	StatePaused State = "paused"
	// StateCompleting means the countdown hit zero and the machine is waiting
	// for the completion to be acknowledged. Tick and Start reject input in
	// this state, which is what makes a completion fire exactly once.
	StateCompleting State = "completing"
)

// Awarder grants the work-session reward. The ledger implements it.
type Awarder interface {
	Award(ctx context.Context, userID string, amount int64) (*models.Account, error)
}

// PhaseSaver persists the phase the machine lands on.
type PhaseSaver interface {
	SaveCurrentPhase(ctx context.Context, userID string, phase models.Phase) (*models.Account, error)
}

// Snapshot is a point-in-time view of a machine for the HTTP surface.
type Snapshot struct {
	Phase                 models.Phase `json:"phase"`
	State                 State        `json:"state"`
	RemainingSeconds      int          `json:"remaining_seconds"`
	CompletedWorkSessions int          `json:"completed_work_sessions"`
	PendingPhase          models.Phase `json:"pending_phase,omitempty"`
}

// Machine drives one user's work/short-break/long-break cycle and turns work
// completions into ledger awards. All methods are safe for concurrent use;
// state only changes under the mutex.
type Machine struct {
	mu       sync.Mutex
	userID   string
	settings models.TimerSettings

	phase       models.Phase
	state       State
	remaining   int // seconds
	sessions    int // completed work sessions, monotonic for the machine's lifetime
	pendingNext models.Phase

	stopTick chan struct{} // non-nil while a tick loop runs

	clock        clockwork.Clock
	awarder      Awarder
	phases       PhaseSaver
	logger       *slog.Logger
	onTransition func(string, Snapshot)
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock swaps the countdown clock.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Machine) { m.clock = clock }
}

// WithAwarder wires the reward path for work completions.
func WithAwarder(a Awarder) Option {
	return func(m *Machine) { m.awarder = a }
}

// WithPhaseSaver persists phase transitions back to the preference document.
func WithPhaseSaver(p PhaseSaver) Option {
	return func(m *Machine) { m.phases = p }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithTransitionHook registers a callback invoked (outside the lock) after
// every observable state change, keyed by user ID.
func WithTransitionHook(fn func(userID string, snap Snapshot)) Option {
	return func(m *Machine) { m.onTransition = fn }
}

// New creates a machine loaded with the user's settings, starting idle on the
// persisted phase.
func New(userID string, settings models.TimerSettings, opts ...Option) *Machine {
	if settings.Validate() != nil {
		settings = models.DefaultTimerSettings()
	}
	m := &Machine{
		userID:   userID,
		settings: settings,
		phase:    settings.CurrentPhase,
		state:    StateIdle,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
	}
	m.remaining = int(settings.Duration(m.phase) / time.Second)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the countdown. No-op while completing or at zero remaining.
func (m *Machine) Start() {
	m.mu.Lock()
	if m.state == StateRunning || m.state == StateCompleting || m.remaining == 0 {
		m.mu.Unlock()
		return
	}
	m.state = StateRunning
	stop := make(chan struct{})
	m.stopTick = stop
	m.mu.Unlock()

	go m.runLoop(stop)
	m.notify()
}

// Pause freezes the countdown.
func (m *Machine) Pause() {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return
	}
	m.stopTickLocked()
	m.state = StatePaused
	m.mu.Unlock()
	m.notify()
}

// Toggle flips between running and paused.
func (m *Machine) Toggle() {
	m.mu.Lock()
	running := m.state == StateRunning
	m.mu.Unlock()
	if running {
		m.Pause()
	} else {
		m.Start()
	}
}

// Reset stops the countdown, restores the current phase's configured duration
// and cancels any completion waiting to be acknowledged.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.stopTickLocked()
	m.state = StateIdle
	m.pendingNext = ""
	m.remaining = int(m.settings.Duration(m.phase) / time.Second)
	m.mu.Unlock()
	m.notify()
}

// SetPhase jumps directly to a phase, stopping the countdown.
func (m *Machine) SetPhase(phase models.Phase) {
	if !phase.Valid() {
		return
	}
	m.mu.Lock()
	m.stopTickLocked()
	m.state = StateIdle
	m.pendingNext = ""
	m.phase = phase
	m.remaining = int(m.settings.Duration(phase) / time.Second)
	m.mu.Unlock()

	m.savePhase(phase)
	m.notify()
}

// Acknowledge dismisses a work completion and commits the pending phase
// transition. Break completions never wait for acknowledgement.
func (m *Machine) Acknowledge() {
	m.mu.Lock()
	if m.state != StateCompleting || m.pendingNext == "" {
		m.mu.Unlock()
		return
	}
	next := m.pendingNext
	m.transitionLocked(next)
	m.mu.Unlock()

	m.savePhase(next)
	m.notify()
}

// Stop tears the machine down. Safe to call more than once.
func (m *Machine) Stop() {
	m.mu.Lock()
	m.stopTickLocked()
	if m.state == StateRunning {
		m.state = StatePaused
	}
	m.mu.Unlock()
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Phase:                 m.phase,
		State:                 m.state,
		RemainingSeconds:      m.remaining,
		CompletedWorkSessions: m.sessions,
		PendingPhase:          m.pendingNext,
	}
}

// Tick advances the countdown by exactly one second. It only acts while
// running with time remaining, so a tick that races a completion is a no-op.
// Every effective tick notifies the transition hook; that is what feeds
// countdown progress to the push channel.
func (m *Machine) Tick() {
	m.mu.Lock()
	if m.state != StateRunning || m.remaining == 0 {
		m.mu.Unlock()
		return
	}
	m.remaining--
	if m.remaining > 0 {
		m.mu.Unlock()
		m.notify()
		return
	}
	m.completeLocked()
	m.mu.Unlock()
	m.notify()
}

func (m *Machine) runLoop(stop chan struct{}) {
	ticker := m.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			m.Tick()
		}
	}
}

// completeLocked handles the countdown reaching zero. Called with the mutex
// held, fires at most once per countdown: the machine leaves StateRunning
// here and ticking stops.
func (m *Machine) completeLocked() {
	m.stopTickLocked()

	if m.phase != models.PhaseWork {
		// Breaks auto-transition back to work without acknowledgement.
		m.transitionLocked(models.PhaseWork)
		go m.savePhase(models.PhaseWork)
		return
	}

	m.state = StateCompleting
	m.sessions++
	amount := RewardStandard
	if m.sessions%m.settings.LongBreakInterval == 0 {
		amount = RewardInterval
		m.pendingNext = models.PhaseLongBreak
	} else {
		m.pendingNext = models.PhaseShortBreak
	}

	// The reward path suspends on network I/O; the machine does not wait for
	// it and a failure never blocks the phase transition.
	go m.award(amount)
}

func (m *Machine) transitionLocked(next models.Phase) {
	m.phase = next
	m.pendingNext = ""
	m.state = StateIdle
	m.remaining = int(m.settings.Duration(next) / time.Second)
}

func (m *Machine) award(amount int64) {
	if m.awarder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
	defer cancel()
	if _, err := m.awarder.Award(ctx, m.userID, amount); err != nil {
		// Accepted degradation: the user ends up under-rewarded rather than
		// the timer stalling.
		m.logger.Error("reward grant failed",
			"user_id", m.userID,
			"amount", amount,
			"error", err,
		)
	}
}

func (m *Machine) savePhase(phase models.Phase) {
	if m.phases == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
	defer cancel()
	if _, err := m.phases.SaveCurrentPhase(ctx, m.userID, phase); err != nil {
		m.logger.Warn("failed to persist timer phase",
			"user_id", m.userID,
			"phase", phase,
			"error", err,
		)
	}
}

// stopTickLocked cancels the tick loop if one is running.
func (m *Machine) stopTickLocked() {
	if m.stopTick != nil {
		close(m.stopTick)
		m.stopTick = nil
	}
}

func (m *Machine) notify() {
	if m.onTransition == nil {
		return
	}
	m.onTransition(m.userID, m.Snapshot())
}
