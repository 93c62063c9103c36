package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_connections_opened_total",
			Help: "Total WebSocket connections opened",
		},
	)

	ConnectionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_connections_closed_total",
			Help: "Total WebSocket connections closed",
		},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mernverse_active_connections",
			Help: "Currently bound connections",
		},
	)

	// Message metrics
	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_messages_persisted_total",
			Help: "Total messages durably stored",
		},
	)

	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mernverse_messages_rejected_total",
			Help: "Total messages rejected before broadcast",
		},
		[]string{"reason"}, // "validation" or "persistence"
	)

	// Broadcast metrics
	BroadcastDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_broadcast_delivered_total",
			Help: "Total per-recipient broadcast deliveries",
		},
	)

	BroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_broadcast_dropped_total",
			Help: "Total per-recipient deliveries dropped (slow or dead recipients)",
		},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mernverse_sessions_active",
			Help: "Session records currently stored",
		},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mernverse_sessions_swept_total",
			Help: "Total session records evicted by the expiry sweeper",
		},
	)
)
