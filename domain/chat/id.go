package chat

import "github.com/google/uuid"

// NewRoomID returns an unguessable room identifier. UUIDv7 combines 74
// bits from crypto/rand with an embedded millisecond timestamp, so ids
// are collision-resistant without a registration table; rooms are never
// registered anywhere.
func NewRoomID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewMessageID returns a time-ordered message identifier.
func NewMessageID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewConnectionID returns an identifier for one live connection.
func NewConnectionID() string {
	return uuid.New().String()
}
