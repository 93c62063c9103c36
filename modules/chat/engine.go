package chat

import (
	"context"
	"log"
	"strings"
	"time"

	chat "github.com/NotYuSheng/mernverse/domain/chat"
	"github.com/NotYuSheng/mernverse/metrics"
	"github.com/NotYuSheng/mernverse/modules/broadcast"
	"github.com/NotYuSheng/mernverse/modules/history"
	"github.com/NotYuSheng/mernverse/modules/identity"
	"github.com/NotYuSheng/mernverse/modules/registry"
)

// AnonymousName labels a sender whose identity resolution has not
// completed (or was degraded by name-pool exhaustion). An unresolved
// sender is tolerated, not rejected.
const AnonymousName = "Anonymous"

// Engine pipelines each inbound message through validation, durable
// persistence, and room fan-out, and coordinates the connection
// lifecycle across the session store, connection registry, and hub.
type Engine struct {
	sessions *identity.Store
	conns    *registry.Registry
	hub      *broadcast.Hub
	store    history.MessageStore
	publish  func(eventType string, roomID, connID, name string)
	now      func() time.Time
}

// NewEngine wires the engine to its collaborators. publish may be nil
// when no event bus is attached (tests).
func NewEngine(sessions *identity.Store, conns *registry.Registry, hub *broadcast.Hub, store history.MessageStore) *Engine {
	return &Engine{
		sessions: sessions,
		conns:    conns,
		hub:      hub,
		store:    store,
		now:      time.Now,
	}
}

// ResolveIdentity binds the connection to the display name its session
// token maps to. Name-pool exhaustion degrades to the anonymous label
// rather than rejecting the connection.
func (e *Engine) ResolveIdentity(connID, token string) (name string, isNew bool) {
	name, isNew, err := e.sessions.Resolve(token)
	if err != nil {
		log.Printf("[chat] Name allocation failed for connection %s, degrading to anonymous: %v", connID, err)
		name = AnonymousName
	}
	e.conns.Bind(connID, name)
	return name, isNew
}

// Join moves the connection into roomID and announces the arrival to
// the room. A connection may join before its identity is resolved.
func (e *Engine) Join(connID, roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return &chat.ValidationError{Fields: []string{"room_id"}}
	}

	e.hub.Join(connID, roomID)

	name, ok := e.conns.NameFor(connID)
	if !ok {
		name = AnonymousName
	}
	e.emit(broadcast.FrameUserJoined, roomID, connID, name)
	return nil
}

// Leave removes the connection from its current room, announcing the
// departure if it was in one.
func (e *Engine) Leave(connID string) {
	roomID, ok := e.hub.Leave(connID)
	if !ok {
		return
	}
	name, bound := e.conns.NameFor(connID)
	if !bound {
		name = AnonymousName
	}
	e.emit(broadcast.FrameUserLeft, roomID, connID, name)
}

// Disconnect runs the connection's teardown: leave the room, unbind the
// registry entry. Idempotent, and safe to run concurrently with an
// in-flight Submit for the same connection; that submission completes
// and broadcasts normally.
func (e *Engine) Disconnect(connID string) {
	e.Leave(connID)
	e.conns.Unbind(connID)
}

// Submit runs the message pipeline: resolve sender and room, validate,
// persist, then broadcast. The order is the pipeline's core invariant:
// nothing unvalidated reaches storage, and nothing reaches a recipient
// that was not durably recorded first.
func (e *Engine) Submit(ctx context.Context, connID, rawBody, explicitRoomID string) (*chat.Message, error) {
	sender, ok := e.conns.NameFor(connID)
	if !ok {
		sender = AnonymousName
	}

	roomID := explicitRoomID
	if roomID == "" {
		roomID, _ = e.hub.Room(connID)
	}

	body := strings.TrimSpace(rawBody)
	if err := chat.ValidateMessage(sender, body, roomID); err != nil {
		metrics.MessagesRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	msg := &chat.Message{
		ID:        chat.NewMessageID(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		Timestamp: e.now().UTC(),
	}

	if err := e.store.Append(ctx, msg); err != nil {
		metrics.MessagesRejected.WithLabelValues("persistence").Inc()
		return nil, &chat.PersistenceError{Err: err}
	}
	metrics.MessagesPersisted.Inc()

	e.hub.Broadcast(roomID, broadcast.Frame{
		Type:       broadcast.FrameMessageBroadcast,
		RoomID:     roomID,
		SenderName: msg.Sender,
		Body:       msg.Body,
		Timestamp:  msg.Timestamp,
	})
	return msg, nil
}

// History passes a room's stored messages through, oldest first.
func (e *Engine) History(ctx context.Context, roomID string) ([]chat.Message, error) {
	return e.store.ListByRoom(ctx, roomID)
}

func (e *Engine) emit(eventType, roomID, connID, name string) {
	if e.publish == nil {
		return
	}
	e.publish(eventType, roomID, connID, name)
}
