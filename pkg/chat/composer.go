package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
	"github.com/leonfocus/leonfocus/pkg/websockets"
)

// DefaultRoom is the single shared chat room.
const DefaultRoom = "global"

// ErrStickerLocked is returned when outgoing content references a sticker the
// sender does not own.
var ErrStickerLocked = errors.New("sticker not owned")

var stickerToken = regexp.MustCompile(`:([A-Za-z0-9_.-]+):`)

// ParseStickerTokens extracts the sticker names referenced as :name: tokens,
// in order of appearance, deduplicated.
func ParseStickerTokens(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range stickerToken.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// AccountReader reads the fresh authoritative account for ownership checks.
type AccountReader interface {
	Read(ctx context.Context, userID string) (*models.Account, error)
}

// Composer validates and sends chat messages. Sticker references are checked
// against a fresh account read so a sticker sold or never owned cannot be
// posted on the strength of stale view state.
type Composer struct {
	store     storage.ChatStore
	accounts  AccountReader
	publisher websockets.Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	room      string
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithComposerClock swaps the clock used for message timestamps.
func WithComposerClock(clock clockwork.Clock) ComposerOption {
	return func(c *Composer) { c.clock = clock }
}

// WithComposerLogger overrides the logger.
func WithComposerLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = logger }
}

// WithRoom changes the room messages are sent to.
func WithRoom(room string) ComposerOption {
	return func(c *Composer) { c.room = room }
}

// NewComposer creates a Composer.
func NewComposer(store storage.ChatStore, accounts AccountReader, publisher websockets.Publisher, opts ...ComposerOption) *Composer {
	c := &Composer{
		store:     store,
		accounts:  accounts,
		publisher: publisher,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		room:      DefaultRoom,
	}
	if c.publisher == nil {
		c.publisher = &websockets.NoOpPublisher{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sender identifies the message author.
type Sender struct {
	UserID    string
	Name      string
	AvatarURL string
}

// Send validates the content's sticker references against a fresh account
// read, persists the message, and pushes it to connected clients. The push is
// best-effort; subscribers also receive the message through the store's event
// stream.
func (c *Composer) Send(ctx context.Context, sender Sender, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message content is empty")
	}

	if tokens := ParseStickerTokens(content); len(tokens) > 0 {
		account, err := c.accounts.Read(ctx, sender.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to read account for sticker check: %w", err)
		}
		for _, token := range tokens {
			if !ownsSticker(account, token) {
				return nil, fmt.Errorf("sticker %q: %w", token, ErrStickerLocked)
			}
		}
	}

	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		Room:       c.room,
		Content:    content,
		AuthorID:   sender.UserID,
		AuthorName: sender.Name,
		AvatarURL:  sender.AvatarURL,
		CreatedAt:  c.clock.Now().UTC(),
	}

	created, err := c.store.CreateMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to persist chat message: %w", err)
	}

	if err := c.publisher.Publish(ctx, websockets.Message{
		Type:    websockets.MessageTypeChatMessage,
		Channel: "messages",
		Events:  []string{"create"},
		Payload: created,
	}); err != nil {
		c.logger.Warn("failed to push chat message", "message_id", created.ID, "error", err)
	}

	return created, nil
}

// History returns the most recent messages in chronological order.
func (c *Composer) History(ctx context.Context, limit int32) ([]models.ChatMessage, error) {
	return c.store.ListMessages(ctx, c.room, limit)
}

// ownsSticker checks the token against inventory keys the way users type
// them: exact, case-insensitive, with or without the .png extension.
func ownsSticker(account *models.Account, token string) bool {
	if account.OwnedCount(token) > 0 {
		return true
	}
	lower := strings.ToLower(strings.TrimSuffix(token, ".png"))
	for name, count := range account.Inventory {
		if count <= 0 {
			continue
		}
		if strings.ToLower(strings.TrimSuffix(name, ".png")) == lower {
			return true
		}
	}
	return false
}
