package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
)

// AccountService is the slice of the ledger the handler needs.
type AccountService interface {
	Read(ctx context.Context, userID string) (*models.Account, error)
	UpdateTimerSettings(ctx context.Context, userID string, settings models.TimerSettings) (*models.Account, error)
}

// AccountsHandler holds the dependencies for account-related handlers.
type AccountsHandler struct {
	Service AccountService
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(service AccountService) *AccountsHandler {
	return &AccountsHandler{Service: service}
}

// GetAccount handles the logic for retrieving a user's account.
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request, userID string) {
	account, err := h.Service.Read(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			http.Error(w, fmt.Sprintf("Account not found: %v", err), http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve account: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(account); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// UpdateTimerSettings handles the logic for replacing a user's timer settings.
func (h *AccountsHandler) UpdateTimerSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var settings models.TimerSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := settings.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid timer settings: %v", err), http.StatusBadRequest)
		return
	}

	account, err := h.Service.UpdateTimerSettings(r.Context(), userID, settings)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			http.Error(w, fmt.Sprintf("Account not found: %v", err), http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to update timer settings: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(account); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
