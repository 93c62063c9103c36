package chat

import "time"

// Message represents one chat utterance. The sender name is always
// assigned by the server from the authoring connection's resolved
// identity, never taken from client input. Messages are immutable once
// persisted.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Session represents a returning client across reconnects, keyed by a
// client-held bearer token. At most one display name is bound per token.
type Session struct {
	Token    string    `json:"-"`
	Name     string    `json:"name"`
	LastSeen time.Time `json:"last_seen"`
}
