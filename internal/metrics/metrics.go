// Package metrics provides Prometheus metrics for tonwire.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tonwire"

// Metrics contains all Prometheus metrics for the client and server stacks.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	HandshakeErrors   prometheus.Counter

	// Query metrics
	QueriesInFlight prometheus.Gauge
	QueriesTotal    *prometheus.CounterVec
	QueryDuration   prometheus.Histogram
	AnswersDropped  prometheus.Counter

	// Transport metrics
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
}

// New creates the metric set registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently established connections.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of connections established.",
		}),
		HandshakeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshake_errors_total",
			Help:      "Total number of failed handshakes.",
		}),
		QueriesInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queries_in_flight",
			Help:      "Number of queries awaiting an answer.",
		}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time from query dispatch to answer delivery.",
			Buckets:   prometheus.DefBuckets,
		}),
		AnswersDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_dropped_total",
			Help:      "Answers discarded because no call was awaiting their tag.",
		}),
		PacketsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Total number of packets framed and sent.",
		}),
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Total number of packets received and verified.",
		}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total payload bytes sent.",
		}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total payload bytes received.",
		}),
	}
}

// Query outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// ConnOpened records an established connection.
func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Inc()
	m.ConnectionsTotal.Inc()
}

// ConnClosed records a torn-down connection.
func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

// HandshakeFailed records a failed handshake.
func (m *Metrics) HandshakeFailed() {
	if m == nil {
		return
	}
	m.HandshakeErrors.Inc()
}

// QueryStarted records a dispatched query.
func (m *Metrics) QueryStarted() {
	if m == nil {
		return
	}
	m.QueriesInFlight.Inc()
}

// QueryFinished records a settled query with its outcome and duration in
// seconds.
func (m *Metrics) QueryFinished(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.QueriesInFlight.Dec()
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(seconds)
}

// AnswerDropped records an answer with no awaiting call.
func (m *Metrics) AnswerDropped() {
	if m == nil {
		return
	}
	m.AnswersDropped.Inc()
}

// PacketSent records an outgoing packet and its payload size.
func (m *Metrics) PacketSent(payloadLen int) {
	if m == nil {
		return
	}
	m.PacketsSent.Inc()
	m.BytesSent.Add(float64(payloadLen))
}

// PacketReceived records an incoming packet and its payload size.
func (m *Metrics) PacketReceived(payloadLen int) {
	if m == nil {
		return
	}
	m.PacketsReceived.Inc()
	m.BytesReceived.Add(float64(payloadLen))
}
