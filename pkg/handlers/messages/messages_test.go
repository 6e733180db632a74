package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leonfocus/leonfocus/pkg/chat"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	history    []models.ChatMessage
	historyErr error
	sendErr    error
	lastLimit  int32
	lastSender chat.Sender
}

func (s *stubChat) Send(ctx context.Context, sender chat.Sender, content string) (*models.ChatMessage, error) {
	s.lastSender = sender
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &models.ChatMessage{
		ID:         "m1",
		Room:       chat.DefaultRoom,
		Content:    content,
		AuthorID:   sender.UserID,
		AuthorName: sender.Name,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubChat) History(ctx context.Context, limit int32) ([]models.ChatMessage, error) {
	s.lastLimit = limit
	return s.history, s.historyErr
}

func TestListMessages(t *testing.T) {
	t.Run("Default Limit", func(t *testing.T) {
		service := &stubChat{history: []models.ChatMessage{{ID: "m1"}, {ID: "m2"}}}
		h := NewMessagesHandler(service)

		rr := httptest.NewRecorder()
		h.ListMessages(rr, httptest.NewRequest(http.MethodGet, "/messages", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int32(50), service.lastLimit)
		var got []models.ChatMessage
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 2)
	})

	t.Run("Explicit Limit", func(t *testing.T) {
		service := &stubChat{}
		h := NewMessagesHandler(service)

		rr := httptest.NewRecorder()
		h.ListMessages(rr, httptest.NewRequest(http.MethodGet, "/messages?limit=10", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int32(10), service.lastLimit)
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{})

		for _, raw := range []string{"abc", "0", "-5"} {
			rr := httptest.NewRecorder()
			h.ListMessages(rr, httptest.NewRequest(http.MethodGet, "/messages?limit="+raw, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{historyErr: storage.ErrStoreUnavailable})

		rr := httptest.NewRecorder()
		h.ListMessages(rr, httptest.NewRequest(http.MethodGet, "/messages", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCreateMessage(t *testing.T) {
	newSendRequest := func(t *testing.T, content string) *http.Request {
		t.Helper()
		body, err := json.Marshal(CreateMessageRequest{Content: content})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBuffer(body))
		req.Header.Set("X-User-Id", "user1")
		req.Header.Set("X-User-Name", "Leon")
		req.Header.Set("X-Avatar-Url", "https://cdn.example.com/a.png")
		return req
	}

	t.Run("Success", func(t *testing.T) {
		service := &stubChat{}
		h := NewMessagesHandler(service)

		rr := httptest.NewRecorder()
		h.CreateMessage(rr, newSendRequest(t, "hello"))

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "user1", service.lastSender.UserID)
		assert.Equal(t, "Leon", service.lastSender.Name)
		var got models.ChatMessage
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "hello", got.Content)
	})

	t.Run("Missing Identity Headers", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{})

		body, err := json.Marshal(CreateMessageRequest{Content: "hello"})
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		h.CreateMessage(rr, httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{})

		req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString("{nope"))
		req.Header.Set("X-User-Id", "user1")
		req.Header.Set("X-User-Name", "Leon")
		rr := httptest.NewRecorder()
		h.CreateMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Locked Sticker", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{sendErr: chat.ErrStickerLocked})

		rr := httptest.NewRecorder()
		h.CreateMessage(rr, newSendRequest(t, ":leon.png:"))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Send Failure", func(t *testing.T) {
		h := NewMessagesHandler(&stubChat{sendErr: storage.ErrStoreUnavailable})

		rr := httptest.NewRecorder()
		h.CreateMessage(rr, newSendRequest(t, "hello"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
