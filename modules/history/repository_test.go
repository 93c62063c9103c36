package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))

	return NewRepository(db)
}

func newMessage(roomID, body string, at time.Time) *chat.Message {
	return &chat.Message{
		ID:        chat.NewMessageID(),
		RoomID:    roomID,
		Sender:    "Nova",
		Body:      body,
		Timestamp: at,
	}
}

func TestRepository_AppendAndListRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	msg := newMessage("room-a", "hello", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Append(ctx, msg))

	messages, err := repo.ListByRoom(ctx, "room-a")
	require.NoError(t, err)
	require.Len(t, messages, 1)

	got := messages[0]
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.RoomID, got.RoomID)
	assert.Equal(t, msg.Sender, got.Sender)
	assert.Equal(t, msg.Body, got.Body)
	assert.True(t, got.Timestamp.Equal(msg.Timestamp))
}

func TestRepository_ListOrdersByTimestampAscending(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order; listing must come back oldest first.
	require.NoError(t, repo.Append(ctx, newMessage("room-a", "third", base.Add(2*time.Minute))))
	require.NoError(t, repo.Append(ctx, newMessage("room-a", "first", base)))
	require.NoError(t, repo.Append(ctx, newMessage("room-a", "second", base.Add(time.Minute))))

	messages, err := repo.ListByRoom(ctx, "room-a")
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
	assert.Equal(t, "third", messages[2].Body)
}

func TestRepository_ListIsScopedToRoom(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Append(ctx, newMessage("room-a", "in a", now)))
	require.NoError(t, repo.Append(ctx, newMessage("room-b", "in b", now)))

	messages, err := repo.ListByRoom(ctx, "room-a")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "in a", messages[0].Body)
}

func TestRepository_ListUnknownRoomIsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	messages, err := repo.ListByRoom(context.Background(), "no-such-room")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRepository_DuplicateIDIsRejected(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	msg := newMessage("room-a", "hello", time.Now().UTC())
	require.NoError(t, repo.Append(ctx, msg))

	dup := *msg
	dup.Body = "same id, different body"
	assert.Error(t, repo.Append(ctx, &dup))
}
