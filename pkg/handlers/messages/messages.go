package messages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/leonfocus/leonfocus/pkg/chat"
	"github.com/leonfocus/leonfocus/pkg/models"
)

const defaultListLimit = 50

// ChatService is the slice of the composer the handler needs.
type ChatService interface {
	Send(ctx context.Context, sender chat.Sender, content string) (*models.ChatMessage, error)
	History(ctx context.Context, limit int32) ([]models.ChatMessage, error)
}

// MessagesHandler holds the dependencies for chat-related handlers.
type MessagesHandler struct {
	Chat ChatService
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(chatService ChatService) *MessagesHandler {
	return &MessagesHandler{Chat: chatService}
}

// ListMessages handles the logic for retrieving recent chat history.
func (h *MessagesHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := int32(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			http.Error(w, fmt.Sprintf("Invalid limit: %q", raw), http.StatusBadRequest)
			return
		}
		limit = int32(parsed)
	}

	msgs, err := h.Chat.History(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve messages: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msgs); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// CreateMessageRequest is the request body for sending a chat message.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// CreateMessage handles the logic for sending a chat message. The author
// identity comes from the authenticated request headers set upstream.
func (h *MessagesHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	sender := chat.Sender{
		UserID:    r.Header.Get("X-User-Id"),
		Name:      r.Header.Get("X-User-Name"),
		AvatarURL: r.Header.Get("X-Avatar-Url"),
	}
	if sender.UserID == "" || sender.Name == "" {
		http.Error(w, "Missing user identity headers", http.StatusUnauthorized)
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	msg, err := h.Chat.Send(r.Context(), sender, req.Content)
	if err != nil {
		if errors.Is(err, chat.ErrStickerLocked) {
			http.Error(w, fmt.Sprintf("Sticker not owned: %v", err), http.StatusForbidden)
		} else {
			http.Error(w, fmt.Sprintf("Failed to send message: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
