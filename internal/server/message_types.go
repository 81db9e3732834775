package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeBet    MessageType = "bet"
	MessageTypeAction MessageType = "action"

	// Server to client messages
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeShuffle MessageType = "shuffle"
	MessageTypeResult  MessageType = "result"
	MessageTypeTimeout MessageType = "timeout"
	MessageTypeError   MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
