package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_sessions_connected",
		Help: "Number of sessions currently tracked by the registry.",
	})

	MessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total user messages accepted into room logs.",
	})

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_rooms_created_total",
		Help: "Total rooms created, lazily or explicitly.",
	})

	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcasts_dropped_total",
		Help: "Broadcast payloads dropped because a client send buffer was full.",
	})

	SessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_sessions_evicted_total",
		Help: "Sessions removed by the janitor for inactivity.",
	})

	SendsRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_sends_rate_limited_total",
		Help: "send-message events rejected by the per-connection rate limiter.",
	})
)
