package history

import (
	"context"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
)

// MessageStore is the persistence contract the message pipeline depends
// on: append one message, list a room's messages oldest first. Both the
// plain repository and the cached wrapper implement it.
type MessageStore interface {
	Append(ctx context.Context, msg *chat.Message) error
	ListByRoom(ctx context.Context, roomID string) ([]chat.Message, error)
}
