// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaderz"

// Metrics groups the server's collectors. A nil *Metrics is valid and
// records nothing, so components can be built without metrics in tests.
type Metrics struct {
	messages        *prometheus.CounterVec
	replyFailures   prometheus.Counter
	eventsPublished *prometheus.CounterVec
	subscribers     prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	rpcs            *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages handled, by session branch.",
		}, []string{"branch"}),
		replyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_failed_total",
			Help:      "Outbound replies the message transport rejected.",
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Broadcast events published, by event type.",
		}, []string{"type"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Open leaderboard and chat subscriber connections.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs served, by procedure and result code.",
		}, []string{"procedure", "code"}),
	}

	reg.MustRegister(m.messages, m.replyFailures, m.eventsPublished, m.subscribers, m.requestDuration, m.rpcs)
	return m
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) MessageHandled(branch string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(branch).Inc()
}

func (m *Metrics) ReplyFailed() {
	if m == nil {
		return
	}
	m.replyFailures.Inc()
}

func (m *Metrics) EventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

// SubscriberAdded and SubscriberRemoved track open subscriber connections.
func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

func (m *Metrics) RequestServed(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// RPCServed counts one Connect call. code is "ok" for a successful call.
func (m *Metrics) RPCServed(procedure, code string) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(procedure, code).Inc()
}
