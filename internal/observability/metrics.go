package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModerationDecisions counts approve/reject/delete outcomes on event posts.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminhub_moderation_decisions_total",
		Help: "Moderation decisions by action and result",
	}, []string{"action", "result"})

	// SOSContactDeliveries counts SOS deliveries per contact by final status.
	SOSContactDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminhub_sos_contact_deliveries_total",
		Help: "SOS contact deliveries by status",
	}, []string{"status"})

	// NotificationDeliveries counts broadcast deliveries per recipient.
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminhub_notification_deliveries_total",
		Help: "Broadcast notification deliveries by result",
	}, []string{"result"})

	// CacheLookups counts cache-aside lookups by namespace and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminhub_cache_lookups_total",
		Help: "Cache lookups by namespace and outcome",
	}, []string{"namespace", "outcome"})

	// AdminFeedConnections is the number of connected live-feed sockets.
	AdminFeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adminhub_admin_feed_connections",
		Help: "Active admin live feed WebSocket connections",
	})

	// AdminFeedDrops counts feed messages dropped for slow clients.
	AdminFeedDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminhub_admin_feed_drops_total",
		Help: "Admin feed messages dropped due to backpressure",
	})
)

// RecordModeration increments the decision counter for action.
func RecordModeration(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ModerationDecisions.WithLabelValues(action, result).Inc()
}

// RecordCacheLookup increments the lookup counter for namespace.
func RecordCacheLookup(namespace string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookups.WithLabelValues(namespace, outcome).Inc()
}
