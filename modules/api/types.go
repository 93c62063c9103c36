package api

// ClientFrame is the structure received from WebSocket clients.
type ClientFrame struct {
	Type         string `json:"type"`
	SessionToken string `json:"session_token,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	Body         string `json:"body,omitempty"`
}

// Client-to-server frame types.
const (
	FrameResolveIdentity = "resolve-identity"
	FrameJoinRoom        = "join-room"
	FrameSendMessage     = "send-message"
)

// RoomResponse is the API response for a newly minted room.
type RoomResponse struct {
	RoomID string `json:"room_id"`
}

// HistoryResponse is the API response for room history.
type HistoryResponse struct {
	RoomID   string `json:"room_id"`
	Messages any    `json:"messages"`
	Total    int    `json:"total"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
