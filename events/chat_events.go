package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserJoinedEvent is emitted when a connection joins a room.
type UserJoinedEvent struct {
	RoomID       string    `json:"room_id"`
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a connection leaves its room, either
// explicitly or by disconnecting.
type UserLeftEvent struct {
	RoomID       string    `json:"room_id"`
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event definitions for the chat engine.
var (
	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)
)
