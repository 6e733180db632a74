package storage

import (
	"context"

	"github.com/leonfocus/leonfocus/pkg/models"
)

// ChatStore defines the interface for the chat message collection.
type ChatStore interface {
	// CreateMessage persists a new chat message and returns it.
	CreateMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)

	// ListMessages retrieves the most recent messages for a room in ascending
	// created-at order.
	ListMessages(ctx context.Context, room string, limit int32) ([]models.ChatMessage, error)
}
