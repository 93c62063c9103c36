package history

import (
	"time"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
)

// Record is the persisted form of a chat message.
type Record struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	RoomID    string    `gorm:"size:64;not null;index" json:"room_id"`
	Sender    string    `gorm:"size:50;not null" json:"sender"`
	Body      string    `gorm:"size:500;not null" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for the Record model.
func (Record) TableName() string {
	return "messages"
}

func toRecord(msg *chat.Message) *Record {
	return &Record{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Sender:    msg.Sender,
		Body:      msg.Body,
		CreatedAt: msg.Timestamp,
	}
}

func toMessage(rec *Record) chat.Message {
	return chat.Message{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		Sender:    rec.Sender,
		Body:      rec.Body,
		Timestamp: rec.CreatedAt,
	}
}
