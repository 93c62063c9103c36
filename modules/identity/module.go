package identity

import (
	"context"
	"log"
	"time"

	"github.com/go-monolith/mono"
)

// Module owns the session store and its expiry sweeper. The sweeper is
// an explicit periodic task tied to the module lifecycle: started in
// Start, stopped in Stop.
type Module struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the identity module. ttl is how long an idle session
// survives; interval is how often the sweeper runs.
func NewModule(ttl, interval time.Duration) *Module {
	return &Module{
		store:    NewStore(),
		ttl:      ttl,
		interval: interval,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "identity"
}

// Store returns the session store for other modules to use.
func (m *Module) Store() *Store {
	return m.store
}

// Start launches the expiry sweeper.
func (m *Module) Start(_ context.Context) error {
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	go m.sweepLoop()
	log.Printf("[identity] Module started - sweeping every %s, session TTL %s", m.interval, m.ttl)
	return nil
}

// Stop halts the sweeper and waits for it to exit.
func (m *Module) Stop(_ context.Context) error {
	if m.done != nil {
		close(m.done)
		<-m.stopped
	}
	log.Println("[identity] Module stopped")
	return nil
}

// Health reports the module health.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"stored_sessions": m.store.Len(),
		},
	}
}

func (m *Module) sweepLoop() {
	defer close(m.stopped)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if removed := m.store.Sweep(m.ttl); removed > 0 {
				log.Printf("[identity] Swept %d expired sessions", removed)
			}
		}
	}
}
