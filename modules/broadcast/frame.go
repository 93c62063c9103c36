package broadcast

import "time"

// Frame is the structure sent to WebSocket clients. Sender identity is
// always the server-resolved display name; nothing client-asserted ever
// reaches other participants.
type Frame struct {
	Type        string    `json:"type"`
	RoomID      string    `json:"room_id,omitempty"`
	SenderName  string    `json:"sender_name,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Body        string    `json:"body,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Code        string    `json:"code,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

// Server-to-client frame types.
const (
	FrameIdentityAssigned = "identity-assigned"
	FrameRoomJoined       = "room-joined"
	FrameMessageBroadcast = "message-broadcast"
	FrameUserJoined       = "user-joined"
	FrameUserLeft         = "user-left"
	FrameError            = "error"
)

// Error codes carried on error frames.
const (
	CodeValidation  = "validation_error"
	CodePersistence = "persistence_error"
	CodeRateLimited = "rate_limited"
	CodeMalformed   = "malformed"
)
