package timers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
	"github.com/leonfocus/leonfocus/pkg/timer"
)

// SessionSource yields the per-user timer machine.
type SessionSource interface {
	Get(ctx context.Context, userID string) (*timer.Machine, error)
}

// TimersHandler holds the dependencies for timer-session handlers.
type TimersHandler struct {
	Sessions SessionSource
}

// NewTimersHandler creates a new TimersHandler.
func NewTimersHandler(sessions SessionSource) *TimersHandler {
	return &TimersHandler{Sessions: sessions}
}

// GetTimer returns the user's current timer state.
func (h *TimersHandler) GetTimer(w http.ResponseWriter, r *http.Request, userID string) {
	h.withMachine(w, r, userID, func(m *timer.Machine) {})
}

// StartTimer starts the countdown.
func (h *TimersHandler) StartTimer(w http.ResponseWriter, r *http.Request, userID string) {
	h.withMachine(w, r, userID, func(m *timer.Machine) { m.Start() })
}

// PauseTimer pauses the countdown.
func (h *TimersHandler) PauseTimer(w http.ResponseWriter, r *http.Request, userID string) {
	h.withMachine(w, r, userID, func(m *timer.Machine) { m.Pause() })
}

// ResetTimer restores the current phase's full duration.
func (h *TimersHandler) ResetTimer(w http.ResponseWriter, r *http.Request, userID string) {
	h.withMachine(w, r, userID, func(m *timer.Machine) { m.Reset() })
}

// AcknowledgeTimer dismisses a completion and commits the pending transition.
func (h *TimersHandler) AcknowledgeTimer(w http.ResponseWriter, r *http.Request, userID string) {
	h.withMachine(w, r, userID, func(m *timer.Machine) { m.Acknowledge() })
}

// SetPhaseRequest is the request body for jumping to a phase.
type SetPhaseRequest struct {
	Phase models.Phase `json:"phase"`
}

// SetPhase jumps the timer to a chosen phase.
func (h *TimersHandler) SetPhase(w http.ResponseWriter, r *http.Request, userID string) {
	var req SetPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if !req.Phase.Valid() {
		http.Error(w, fmt.Sprintf("Unknown phase %q", req.Phase), http.StatusBadRequest)
		return
	}
	h.withMachine(w, r, userID, func(m *timer.Machine) { m.SetPhase(req.Phase) })
}

// withMachine loads the machine, applies the command, and responds with the
// resulting snapshot.
func (h *TimersHandler) withMachine(w http.ResponseWriter, r *http.Request, userID string, apply func(*timer.Machine)) {
	m, err := h.Sessions.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			http.Error(w, fmt.Sprintf("Account not found: %v", err), http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to load timer session: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apply(m)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(m.Snapshot()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
