package models

import (
	"fmt"
	"time"
)

// Phase is one of the three timer phases a user cycles through.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseWork, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// TimerSettings holds a user's configured phase durations, stored inside the
// account preference document.
type TimerSettings struct {
	Work              int   `json:"work" dynamodbav:"work"`
	ShortBreak        int   `json:"shortBreak" dynamodbav:"short_break"`
	LongBreak         int   `json:"longBreak" dynamodbav:"long_break"`
	LongBreakInterval int   `json:"longBreakInterval" dynamodbav:"long_break_interval"`
	CurrentPhase      Phase `json:"currentPhase" dynamodbav:"current_phase"`
}

// DefaultTimerSettings returns the settings a fresh account starts with.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		Work:              25,
		ShortBreak:        5,
		LongBreak:         15,
		LongBreakInterval: 4,
		CurrentPhase:      PhaseWork,
	}
}

// Validate checks that every duration and the interval are positive and that
// the stored phase is known.
func (s TimerSettings) Validate() error {
	if s.Work <= 0 || s.ShortBreak <= 0 || s.LongBreak <= 0 {
		return fmt.Errorf("timer durations must be positive, got %d/%d/%d", s.Work, s.ShortBreak, s.LongBreak)
	}
	if s.LongBreakInterval <= 0 {
		return fmt.Errorf("long break interval must be positive, got %d", s.LongBreakInterval)
	}
	if !s.CurrentPhase.Valid() {
		return fmt.Errorf("unknown timer phase %q", s.CurrentPhase)
	}
	return nil
}

// Duration returns the configured countdown length for a phase.
func (s TimerSettings) Duration(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return time.Duration(s.ShortBreak) * time.Minute
	case PhaseLongBreak:
		return time.Duration(s.LongBreak) * time.Minute
	default:
		return time.Duration(s.Work) * time.Minute
	}
}

// Account is the per-user preference document. It is always read and written
// as a whole; the ledger is the only component allowed to mutate Balance and
// Inventory.
type Account struct {
	UserID    string           `json:"user_id" dynamodbav:"user_id"`
	Name      string           `json:"name" dynamodbav:"name"`
	AvatarURL string           `json:"avatar_url,omitempty" dynamodbav:"avatar_url,omitempty"`
	Balance   int64            `json:"balance" dynamodbav:"balance"`
	Inventory map[string]int64 `json:"inventory" dynamodbav:"inventory"`
	Timer     TimerSettings    `json:"timer" dynamodbav:"timer"`
	Volume    int              `json:"volume" dynamodbav:"volume"`
	CreatedAt time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// Clone returns a deep copy so callers can overlay changes without touching
// the snapshot they read.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Inventory = make(map[string]int64, len(a.Inventory))
	for name, count := range a.Inventory {
		cp.Inventory[name] = count
	}
	return &cp
}

// OwnedCount returns the inventory count for a sticker; absence means locked.
func (a *Account) OwnedCount(sticker string) int64 {
	if a.Inventory == nil {
		return 0
	}
	return a.Inventory[sticker]
}

// Sticker is one collectible catalog entry.
type Sticker struct {
	ID   string `json:"id" dynamodbav:"id"`
	Name string `json:"name" dynamodbav:"name"`
}

// ChatMessage is a message in the shared chat room. Content may embed
// :stickerName: tokens.
type ChatMessage struct {
	ID         string    `json:"id" dynamodbav:"id"`
	Room       string    `json:"room" dynamodbav:"room"`
	Content    string    `json:"content" dynamodbav:"content"`
	AuthorID   string    `json:"author_id" dynamodbav:"author_id"`
	AuthorName string    `json:"author_name" dynamodbav:"author_name"`
	AvatarURL  string    `json:"avatar_url,omitempty" dynamodbav:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

// LedgerEventKind labels a confirmed ledger mutation on the audit feed.
type LedgerEventKind string

const (
	LedgerEventAward LedgerEventKind = "award"
	LedgerEventSpend LedgerEventKind = "spend"
)

// LedgerEvent is the audit record emitted after a confirmed balance change.
type LedgerEvent struct {
	EventID    string          `json:"event_id"`
	UserID     string          `json:"user_id"`
	Kind       LedgerEventKind `json:"kind"`
	Amount     int64           `json:"amount"`
	Unlocks    []string        `json:"unlocks,omitempty"`
	NewBalance int64           `json:"new_balance"`
	Timestamp  time.Time       `json:"timestamp"`
}
