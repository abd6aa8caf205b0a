package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "horn"

// Metrics contains the metrics shared by the horn client, bridge and service
type Metrics struct {
	// NATS metrics
	NATSConnected      prometheus.Gauge
	NATSRTT            prometheus.Gauge
	NATSReconnects     prometheus.Counter
	NATSCircuitBreaker prometheus.Gauge

	// RPC client metrics
	RPCCalls        *prometheus.CounterVec
	RPCCallDuration *prometheus.HistogramVec

	// Bus bridge metrics
	BridgeMessages      *prometheus.CounterVec
	BridgePublished     prometheus.Counter
	BridgeParseErrors   prometheus.Counter
	BridgePublishErrors prometheus.Counter
	HornActive          prometheus.Gauge

	// Horn service metrics
	ServiceRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "nats",
			Name:      "connected",
			Help:      "NATS connection status (0=disconnected, 1=connected)",
		}),
		NATSRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "nats",
			Name:      "rtt_milliseconds",
			Help:      "NATS round-trip time in milliseconds",
		}),
		NATSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nats",
			Name:      "reconnects_total",
			Help:      "Total number of NATS reconnections",
		}),
		NATSCircuitBreaker: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "nats",
			Name:      "circuit_breaker",
			Help:      "NATS circuit breaker status (0=closed, 1=open, 2=half-open)",
		}),

		RPCCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Horn RPC calls by method and outcome",
		}, []string{"method", "outcome"}),
		RPCCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Horn RPC call duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2},
		}, []string{"method"}),

		BridgeMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "messages_total",
			Help:      "Messages received on the horn topic by attachment tag",
		}, []string{"tag"}),
		BridgePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "published_total",
			Help:      "Current value reports published",
		}),
		BridgeParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "parse_errors_total",
			Help:      "Target value commands with a malformed boolean body",
		}),
		BridgePublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "publish_errors_total",
			Help:      "Current value reports that failed to publish",
		}),
		HornActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "active",
			Help:      "Last confirmed horn state (0=off, 1=on)",
		}),

		ServiceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "requests_total",
			Help:      "Horn service requests by method and status code",
		}, []string{"method", "code"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.NATSConnected, m.NATSRTT, m.NATSReconnects, m.NATSCircuitBreaker,
		m.RPCCalls, m.RPCCallDuration,
		m.BridgeMessages, m.BridgePublished, m.BridgeParseErrors, m.BridgePublishErrors, m.HornActive,
		m.ServiceRequests,
	}
}

// RecordNATSStatus updates NATS connection status
func (m *Metrics) RecordNATSStatus(connected bool) {
	if m == nil {
		return
	}
	m.NATSConnected.Set(boolFloat(connected))
}

// RecordNATSRTT updates NATS round-trip time
func (m *Metrics) RecordNATSRTT(rtt time.Duration) {
	if m == nil {
		return
	}
	m.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments reconnection counter
func (m *Metrics) RecordNATSReconnect() {
	if m == nil {
		return
	}
	m.NATSReconnects.Inc()
}

// RecordCircuitBreakerState updates circuit breaker status
func (m *Metrics) RecordCircuitBreakerState(state int) {
	if m == nil {
		return
	}
	m.NATSCircuitBreaker.Set(float64(state))
}

// RecordRPCCall records one RPC call and how long it took
func (m *Metrics) RecordRPCCall(method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RPCCalls.WithLabelValues(method, outcome).Inc()
	m.RPCCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordBridgeMessage counts an inbound message by tag
func (m *Metrics) RecordBridgeMessage(tag string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(tag).Inc()
}

// RecordBridgeParseError counts a malformed command
func (m *Metrics) RecordBridgeParseError() {
	if m == nil {
		return
	}
	m.BridgeParseErrors.Inc()
}

// RecordBridgePublish counts a report publish attempt
func (m *Metrics) RecordBridgePublish(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.BridgePublishErrors.Inc()
		return
	}
	m.BridgePublished.Inc()
}

// RecordHornState updates the last confirmed horn state
func (m *Metrics) RecordHornState(active bool) {
	if m == nil {
		return
	}
	m.HornActive.Set(boolFloat(active))
}

// RecordServiceRequest counts a horn service request
func (m *Metrics) RecordServiceRequest(method, code string) {
	if m == nil {
		return
	}
	m.ServiceRequests.WithLabelValues(method, code).Inc()
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
