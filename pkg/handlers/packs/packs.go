package packs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leonfocus/leonfocus/pkg/booster"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
	"github.com/leonfocus/leonfocus/pkg/websockets"
)

// PackOpener is the slice of the booster engine the handler needs.
type PackOpener interface {
	Open(ctx context.Context, userID string, packCount int) (*booster.OpenResult, error)
}

// PacksHandler holds the dependencies for booster-pack handlers.
type PacksHandler struct {
	Engine    PackOpener
	Publisher websockets.Publisher
}

// NewPacksHandler creates a new PacksHandler.
func NewPacksHandler(engine PackOpener, publisher websockets.Publisher) *PacksHandler {
	if publisher == nil {
		publisher = &websockets.NoOpPublisher{}
	}
	return &PacksHandler{Engine: engine, Publisher: publisher}
}

// OpenPacksRequest is the request body for opening booster packs.
type OpenPacksRequest struct {
	PackCount int `json:"pack_count"`
}

// OpenPacksResponse reports the outcome of a batch purchase.
type OpenPacksResponse struct {
	Drawn         []models.Sticker `json:"drawn"`
	NewlyUnlocked []string         `json:"newly_unlocked"`
	NewBalance    int64            `json:"new_balance"`
	Inventory     map[string]int64 `json:"inventory"`
}

// OpenPacks handles the logic for purchasing and opening booster packs.
func (h *PacksHandler) OpenPacks(w http.ResponseWriter, r *http.Request, userID string) {
	var req OpenPacksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Engine.Open(r.Context(), userID, req.PackCount)
	if err != nil {
		switch {
		case errors.Is(err, booster.ErrInvalidPackCount):
			http.Error(w, fmt.Sprintf("Invalid pack count: %v", err), http.StatusBadRequest)
		case errors.Is(err, storage.ErrInsufficientFunds):
			http.Error(w, "Insufficient funds", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrAccountNotFound):
			http.Error(w, fmt.Sprintf("Account not found: %v", err), http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Failed to open packs: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Best-effort balance push so other open tabs converge without polling.
	_ = h.Publisher.Publish(r.Context(), websockets.Message{
		Type:    websockets.MessageTypeWalletUpdate,
		Channel: "wallet",
		Events:  []string{"update"},
		Payload: websockets.WalletUpdatePayload{
			UserID:     userID,
			Change:     -int64(req.PackCount) * booster.UnitCost,
			NewBalance: result.Account.Balance,
		},
	})

	resp := OpenPacksResponse{
		Drawn:         result.Drawn,
		NewlyUnlocked: result.NewlyUnlocked,
		NewBalance:    result.Account.Balance,
		Inventory:     result.Account.Inventory,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
