package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeChatMessage carries a newly created chat message.
	MessageTypeChatMessage MessageType = "chatMessage"
	// MessageTypeWalletUpdate carries a confirmed balance change.
	MessageTypeWalletUpdate MessageType = "walletUpdate"
	// MessageTypeTimerUpdate carries a timer state transition.
	MessageTypeTimerUpdate MessageType = "timerUpdate"
)

// Message represents a generic WebSocket message pushed to clients. Channel
// matches the subscription channels the realtime client filters on.
type Message struct {
	Type    MessageType `json:"type"`
	Channel string      `json:"channel"`
	Events  []string    `json:"events"`
	Payload interface{} `json:"payload"`
}

// WalletUpdatePayload is the payload for a walletUpdate message.
type WalletUpdatePayload struct {
	UserID     string `json:"user_id"`
	Change     int64  `json:"change"`
	NewBalance int64  `json:"new_balance"`
}
