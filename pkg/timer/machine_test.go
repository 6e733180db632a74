package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAwarder struct {
	mu    sync.Mutex
	calls []int64
	err   error
	fired chan int64
}

func newStubAwarder() *stubAwarder {
	return &stubAwarder{fired: make(chan int64, 16)}
}

func (s *stubAwarder) Award(ctx context.Context, userID string, amount int64) (*models.Account, error) {
	s.mu.Lock()
	s.calls = append(s.calls, amount)
	s.mu.Unlock()
	s.fired <- amount
	if s.err != nil {
		return nil, s.err
	}
	return &models.Account{UserID: userID, Balance: amount}, nil
}

func (s *stubAwarder) waitForAward(t *testing.T) int64 {
	t.Helper()
	select {
	case amount := <-s.fired:
		return amount
	case <-time.After(time.Second):
		t.Fatal("no award fired")
		return 0
	}
}

func (s *stubAwarder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubPhaseSaver struct {
	mu     sync.Mutex
	phases []models.Phase
	saved  chan models.Phase
}

func newStubPhaseSaver() *stubPhaseSaver {
	return &stubPhaseSaver{saved: make(chan models.Phase, 16)}
}

func (s *stubPhaseSaver) SaveCurrentPhase(ctx context.Context, userID string, phase models.Phase) (*models.Account, error) {
	s.mu.Lock()
	s.phases = append(s.phases, phase)
	s.mu.Unlock()
	s.saved <- phase
	return &models.Account{UserID: userID}, nil
}

func (s *stubPhaseSaver) waitForSave(t *testing.T) models.Phase {
	t.Helper()
	select {
	case phase := <-s.saved:
		return phase
	case <-time.After(time.Second):
		t.Fatal("no phase persisted")
		return ""
	}
}

func testSettings() models.TimerSettings {
	return models.TimerSettings{
		Work:              25,
		ShortBreak:        5,
		LongBreak:         15,
		LongBreakInterval: 4,
		CurrentPhase:      models.PhaseWork,
	}
}

func TestNew(t *testing.T) {
	t.Run("Loads Persisted Phase", func(t *testing.T) {
		settings := testSettings()
		settings.CurrentPhase = models.PhaseShortBreak
		m := New("user1", settings)

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseShortBreak, snap.Phase)
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, 5*60, snap.RemainingSeconds)
	})

	t.Run("Invalid Settings Fall Back To Defaults", func(t *testing.T) {
		m := New("user1", models.TimerSettings{Work: -3})

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseWork, snap.Phase)
		assert.Equal(t, 25*60, snap.RemainingSeconds)
	})
}

func TestWorkCompletion(t *testing.T) {
	t.Run("Fires Exactly Once", func(t *testing.T) {
		awarder := newStubAwarder()
		m := New("user1", testSettings(), WithAwarder(awarder))
		m.state = StateRunning
		m.remaining = 1

		m.Tick()
		m.Tick() // racing tick after zero is a no-op

		snap := m.Snapshot()
		assert.Equal(t, StateCompleting, snap.State)
		assert.Equal(t, 0, snap.RemainingSeconds)
		assert.Equal(t, 1, snap.CompletedWorkSessions)
		assert.Equal(t, models.PhaseShortBreak, snap.PendingPhase)

		awarder.waitForAward(t)
		assert.Equal(t, 1, awarder.callCount())
	})

	t.Run("Standard Reward Off Boundary", func(t *testing.T) {
		awarder := newStubAwarder()
		m := New("user1", testSettings(), WithAwarder(awarder))
		m.state = StateRunning
		m.remaining = 1
		m.sessions = 1 // second completion, interval is 4

		m.Tick()

		assert.Equal(t, RewardStandard, awarder.waitForAward(t))
		assert.Equal(t, models.PhaseShortBreak, m.Snapshot().PendingPhase)
	})

	t.Run("Interval Reward On Boundary", func(t *testing.T) {
		awarder := newStubAwarder()
		m := New("user1", testSettings(), WithAwarder(awarder))
		m.state = StateRunning
		m.remaining = 1
		m.sessions = 3 // fourth completion lands on the interval

		m.Tick()

		assert.Equal(t, RewardInterval, awarder.waitForAward(t))
		assert.Equal(t, models.PhaseLongBreak, m.Snapshot().PendingPhase)
	})

	t.Run("Award Failure Does Not Block Transition", func(t *testing.T) {
		awarder := newStubAwarder()
		awarder.err = assert.AnError
		saver := newStubPhaseSaver()
		m := New("user1", testSettings(), WithAwarder(awarder), WithPhaseSaver(saver))
		m.state = StateRunning
		m.remaining = 1

		m.Tick()
		awarder.waitForAward(t)
		m.Acknowledge()

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseShortBreak, snap.Phase)
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, models.PhaseShortBreak, saver.waitForSave(t))
	})

	t.Run("Start Rejected While Completing", func(t *testing.T) {
		awarder := newStubAwarder()
		m := New("user1", testSettings(), WithAwarder(awarder))
		m.state = StateRunning
		m.remaining = 1
		m.Tick()
		awarder.waitForAward(t)

		m.Start()

		assert.Equal(t, StateCompleting, m.Snapshot().State)
	})
}

func TestBreakCompletion(t *testing.T) {
	t.Run("Auto-Transitions To Work Without Reward", func(t *testing.T) {
		awarder := newStubAwarder()
		saver := newStubPhaseSaver()
		settings := testSettings()
		settings.CurrentPhase = models.PhaseShortBreak
		m := New("user1", settings, WithAwarder(awarder), WithPhaseSaver(saver))
		m.state = StateRunning
		m.remaining = 1

		m.Tick()

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseWork, snap.Phase)
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, 25*60, snap.RemainingSeconds)
		assert.Equal(t, 0, snap.CompletedWorkSessions)
		assert.Equal(t, models.PhaseWork, saver.waitForSave(t))
		assert.Equal(t, 0, awarder.callCount())
	})
}

func TestAcknowledge(t *testing.T) {
	t.Run("No-Op Without Pending Completion", func(t *testing.T) {
		saver := newStubPhaseSaver()
		m := New("user1", testSettings(), WithPhaseSaver(saver))

		m.Acknowledge()

		assert.Equal(t, StateIdle, m.Snapshot().State)
		assert.Empty(t, saver.phases)
	})

	t.Run("Commits Pending Long Break", func(t *testing.T) {
		awarder := newStubAwarder()
		saver := newStubPhaseSaver()
		m := New("user1", testSettings(), WithAwarder(awarder), WithPhaseSaver(saver))
		m.state = StateRunning
		m.remaining = 1
		m.sessions = 3
		m.Tick()
		awarder.waitForAward(t)

		m.Acknowledge()

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseLongBreak, snap.Phase)
		assert.Equal(t, 15*60, snap.RemainingSeconds)
		assert.Equal(t, models.Phase(""), snap.PendingPhase)
		assert.Equal(t, models.PhaseLongBreak, saver.waitForSave(t))
	})
}

func TestReset(t *testing.T) {
	t.Run("Restores Duration And Cancels Pending Completion", func(t *testing.T) {
		awarder := newStubAwarder()
		m := New("user1", testSettings(), WithAwarder(awarder))
		m.state = StateRunning
		m.remaining = 1
		m.Tick()
		awarder.waitForAward(t)

		m.Reset()

		snap := m.Snapshot()
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, models.PhaseWork, snap.Phase)
		assert.Equal(t, 25*60, snap.RemainingSeconds)
		assert.Equal(t, models.Phase(""), snap.PendingPhase)
	})
}

func TestSetPhase(t *testing.T) {
	t.Run("Jumps And Persists", func(t *testing.T) {
		saver := newStubPhaseSaver()
		m := New("user1", testSettings(), WithPhaseSaver(saver))

		m.SetPhase(models.PhaseLongBreak)

		snap := m.Snapshot()
		assert.Equal(t, models.PhaseLongBreak, snap.Phase)
		assert.Equal(t, 15*60, snap.RemainingSeconds)
		assert.Equal(t, models.PhaseLongBreak, saver.waitForSave(t))
	})

	t.Run("Ignores Unknown Phase", func(t *testing.T) {
		m := New("user1", testSettings())

		m.SetPhase(models.Phase("nap"))

		assert.Equal(t, models.PhaseWork, m.Snapshot().Phase)
	})
}

func TestCountdown(t *testing.T) {
	t.Run("Ticker Drives Remaining Down", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		m := New("user1", testSettings(), WithClock(clock))

		m.Start()
		require.Equal(t, StateRunning, m.Snapshot().State)

		clock.BlockUntil(1)
		clock.Advance(time.Second)

		assert.Eventually(t, func() bool {
			return m.Snapshot().RemainingSeconds == 25*60-1
		}, time.Second, 5*time.Millisecond)

		m.Stop()
	})

	t.Run("Pause Freezes Remaining", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		m := New("user1", testSettings(), WithClock(clock))
		m.Start()
		clock.BlockUntil(1)

		m.Pause()
		clock.Advance(5 * time.Second)

		assert.Equal(t, StatePaused, m.Snapshot().State)
		assert.Equal(t, 25*60, m.Snapshot().RemainingSeconds)
	})

	t.Run("Toggle Flips Running And Paused", func(t *testing.T) {
		m := New("user1", testSettings(), WithClock(clockwork.NewFakeClock()))

		m.Toggle()
		assert.Equal(t, StateRunning, m.Snapshot().State)
		m.Toggle()
		assert.Equal(t, StatePaused, m.Snapshot().State)

		m.Stop()
	})
}

func TestTransitionHook(t *testing.T) {
	newHooked := func(snaps *[]Snapshot, mu *sync.Mutex) *Machine {
		return New("user1", testSettings(), WithTransitionHook(func(userID string, snap Snapshot) {
			mu.Lock()
			*snaps = append(*snaps, snap)
			mu.Unlock()
		}))
	}

	t.Run("Fires On Completion", func(t *testing.T) {
		var (
			mu    sync.Mutex
			snaps []Snapshot
		)
		m := newHooked(&snaps, &mu)
		m.state = StateRunning
		m.remaining = 1

		m.Tick()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, snaps, 1)
		assert.Equal(t, StateCompleting, snaps[0].State)
	})

	t.Run("Fires On Countdown Progress", func(t *testing.T) {
		// Connected clients follow the countdown through the push channel,
		// so every effective tick must reach the hook.
		var (
			mu    sync.Mutex
			snaps []Snapshot
		)
		m := newHooked(&snaps, &mu)
		m.state = StateRunning
		m.remaining = 5

		m.Tick()
		m.Tick()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, snaps, 2)
		assert.Equal(t, 4, snaps[0].RemainingSeconds)
		assert.Equal(t, 3, snaps[1].RemainingSeconds)
		assert.Equal(t, StateRunning, snaps[1].State)
	})
}
