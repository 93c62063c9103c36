package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
)

// cacheTTL bounds staleness if an invalidation is ever lost.
const cacheTTL = 5 * time.Minute

// CachedStore wraps a MessageStore with a Redis cache-aside layer on
// ListByRoom. Appends write through and invalidate the room's entry.
// Cache failures degrade to direct reads; the cache is never load-
// bearing for correctness.
type CachedStore struct {
	inner  MessageStore
	client *redis.Client
	group  singleflight.Group
}

// NewCachedStore creates a cached wrapper around inner.
func NewCachedStore(inner MessageStore, client *redis.Client) *CachedStore {
	return &CachedStore{inner: inner, client: client}
}

// Append stores the message and invalidates the room's cached history.
func (c *CachedStore) Append(ctx context.Context, msg *chat.Message) error {
	if err := c.inner.Append(ctx, msg); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(msg.RoomID)).Err(); err != nil {
		log.Printf("[history] Cache invalidation failed for room %s: %v", msg.RoomID, err)
	}
	return nil
}

// ListByRoom serves the room's history from cache when possible.
// Concurrent misses for the same room are collapsed into a single
// database read.
func (c *CachedStore) ListByRoom(ctx context.Context, roomID string) ([]chat.Message, error) {
	key := cacheKey(roomID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var messages []chat.Message
		if err := json.Unmarshal(data, &messages); err == nil {
			return messages, nil
		}
	} else if err != redis.Nil {
		log.Printf("[history] Cache read failed for room %s: %v", roomID, err)
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		messages, err := c.inner.ListByRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(messages); err == nil {
			if err := c.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
				log.Printf("[history] Cache fill failed for room %s: %v", roomID, err)
			}
		}
		return messages, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]chat.Message), nil
}

func cacheKey(roomID string) string {
	return fmt.Sprintf("history:room:%s", roomID)
}
