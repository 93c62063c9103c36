package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/NotYuSheng/mernverse/events"
)

// Module owns the WebSocket hub and consumes presence events from the
// event bus, fanning them out to the affected room.
type Module struct {
	hub *Hub
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new broadcast module.
func NewModule() *Module {
	return &Module{hub: NewHub()}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Hub returns the hub for other modules to use.
func (m *Module) Hub() *Hub {
	return m.hub
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[broadcast] Module started")
	return nil
}

// Stop closes every registered connection.
func (m *Module) Stop(_ context.Context) error {
	count := m.hub.ClientCount()
	m.hub.Close()
	log.Printf("[broadcast] Module stopped - %d clients were connected", count)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      m.hub.RoomCount(),
		},
	}
}

// RegisterEventConsumers subscribes to presence events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: UserJoined, UserLeft")
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.RoomID, Frame{
		Type:        FrameUserJoined,
		RoomID:      event.RoomID,
		DisplayName: event.DisplayName,
		Timestamp:   event.Timestamp,
	})
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.RoomID, Frame{
		Type:        FrameUserLeft,
		RoomID:      event.RoomID,
		DisplayName: event.DisplayName,
		Timestamp:   event.Timestamp,
	})
	return nil
}
