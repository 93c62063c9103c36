package chat

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"

	"github.com/NotYuSheng/mernverse/events"
	"github.com/NotYuSheng/mernverse/modules/broadcast"
	"github.com/NotYuSheng/mernverse/modules/history"
	"github.com/NotYuSheng/mernverse/modules/identity"
	"github.com/NotYuSheng/mernverse/modules/registry"
)

// Module wraps the engine as a mono module and publishes presence
// events on the bus.
type Module struct {
	engine   *Engine
	conns    *registry.Registry
	hub      *broadcast.Hub
	history  *history.Module
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module. The history module's store is
// picked up in Start, once migrations have run.
func NewModule(sessions *identity.Store, hub *broadcast.Hub, historyModule *history.Module) *Module {
	conns := registry.New()
	m := &Module{
		engine:  NewEngine(sessions, conns, hub, nil),
		conns:   conns,
		hub:     hub,
		history: historyModule,
	}
	m.engine.publish = m.publishPresence
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Engine returns the engine for the transport gateway to use.
func (m *Module) Engine() *Engine {
	return m.engine
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// Start wires the engine to the started history store.
func (m *Module) Start(_ context.Context) error {
	store := m.history.Store()
	if store == nil {
		return fmt.Errorf("history store not started")
	}
	m.engine.store = store
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bound_connections": m.conns.Len(),
		},
	}
}

func (m *Module) publishPresence(eventType, roomID, connID, name string) {
	if m.eventBus == nil {
		return
	}

	switch eventType {
	case broadcast.FrameUserJoined:
		event := events.UserJoinedEvent{
			RoomID:       roomID,
			ConnectionID: connID,
			DisplayName:  name,
			Timestamp:    time.Now().UTC(),
		}
		if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
			slog.Warn("Failed to publish UserJoined event", "error", err)
		}
	case broadcast.FrameUserLeft:
		event := events.UserLeftEvent{
			RoomID:       roomID,
			ConnectionID: connID,
			DisplayName:  name,
			Timestamp:    time.Now().UTC(),
		}
		if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
			slog.Warn("Failed to publish UserLeft event", "error", err)
		}
	}
}
