package realtime

import (
	"context"
	"encoding/json"
	"strings"
)

// Event is one server-pushed notification. Delivery is at-least-once with no
// ordering guarantee across channels, in-order within a channel.
type Event struct {
	Events  []string        `json:"events"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// Handler consumes pushed events.
type Handler func(Event)

// EventSource abstracts the realtime push connection.
type EventSource interface {
	// Subscribe opens a subscription for the given channels. handler is
	// invoked once per delivered event; errFn is invoked at most once, when
	// the subscription breaks. The returned cancel releases the handle and is
	// safe to call more than once.
	Subscribe(ctx context.Context, channels []string, handler Handler, errFn func(error)) (cancel func(), err error)
}

// isCreate reports whether the event names a document creation.
func isCreate(events []string) bool {
	for _, e := range events {
		if e == "create" || strings.HasSuffix(e, ".create") {
			return true
		}
	}
	return false
}
