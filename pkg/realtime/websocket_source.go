package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketSource implements EventSource over a websocket push endpoint.
type WebSocketSource struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewWebSocketSource creates a source dialing the given endpoint.
func NewWebSocketSource(url string) *WebSocketSource {
	return &WebSocketSource{
		URL:    url,
		Dialer: websocket.DefaultDialer,
	}
}

// Make sure we conform to the interface
var _ EventSource = (*WebSocketSource)(nil)

type subscribeFrame struct {
	Channels []string `json:"channels"`
}

// Subscribe dials the endpoint, announces the channels, and pumps events to
// the handler until the connection breaks or cancel is called.
func (s *WebSocketSource) Subscribe(ctx context.Context, channels []string, handler Handler, errFn func(error)) (func(), error) {
	conn, _, err := s.Dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	if err := conn.WriteJSON(subscribeFrame{Channels: channels}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to announce channels: %w", err)
	}

	var once sync.Once
	cancelled := false
	var mu sync.Mutex
	cancel := func() {
		once.Do(func() {
			mu.Lock()
			cancelled = true
			mu.Unlock()
			conn.Close()
		})
	}

	go func() {
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				mu.Lock()
				wasCancelled := cancelled
				mu.Unlock()
				// A read failing because cancel closed the conn is teardown,
				// not a connection error.
				if !wasCancelled && errFn != nil {
					errFn(err)
				}
				return
			}
			handler(ev)
		}
	}()

	return cancel, nil
}
