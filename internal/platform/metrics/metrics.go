// Package metrics holds the Prometheus instruments for both services.
// Constructors register on the default registry via promauto; each binary
// creates only the set it needs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UserService holds the primary service's instruments.
type UserService struct {
	UsersCreated    prometheus.Counter
	UsersUpdated    prometheus.Counter
	UsersDeleted    prometheus.Counter
	EventsPublished *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

// NewUserService creates and registers the user service metrics.
func NewUserService() *UserService {
	return &UserService{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_users_created_total",
			Help: "Total number of users created.",
		}),
		UsersUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_users_updated_total",
			Help: "Total number of users updated.",
		}),
		UsersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_users_deleted_total",
			Help: "Total number of users deleted.",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "usertrail_events_published_total",
			Help: "Events successfully handed to the bus, by event type.",
		}, []string{"event_type"}),
		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "usertrail_event_publish_failures_total",
			Help: "Events that could not be handed to the bus, by event type. These mutations have no audit trail.",
		}, []string{"event_type"}),
	}
}

// EventService holds the secondary service's instruments.
type EventService struct {
	EventsConsumed *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	QueriesServed  prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
}

// NewEventService creates and registers the event service metrics.
func NewEventService() *EventService {
	return &EventService{
		EventsConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "usertrail_events_consumed_total",
			Help: "Events appended to the audit log, by event type.",
		}, []string{"event_type"}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "usertrail_events_dropped_total",
			Help: "Events dropped by the consumer, by failure stage (decode|store).",
		}, []string{"stage"}),
		QueriesServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_event_queries_total",
			Help: "Audit history queries served.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_event_query_cache_hits_total",
			Help: "Audit history queries answered from the Redis cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "usertrail_event_query_cache_misses_total",
			Help: "Audit history queries that fell through to the store.",
		}),
	}
}
