package history

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
)

// Repository provides message storage on GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new message repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores one message.
func (r *Repository) Append(ctx context.Context, msg *chat.Message) error {
	if err := r.db.WithContext(ctx).Create(toRecord(msg)).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListByRoom returns a room's messages ordered by timestamp ascending.
func (r *Repository) ListByRoom(ctx context.Context, roomID string) ([]chat.Message, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]chat.Message, 0, len(records))
	for i := range records {
		messages = append(messages, toMessage(&records[i]))
	}
	return messages, nil
}
