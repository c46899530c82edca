package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	metricsInitOnce sync.Once
	sharedMetrics   *clientMetrics
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	inflight prometheus.Gauge

	meter            metric.Meter
	requestCounter   metric.Int64Counter
	latencyHistogram metric.Float64Histogram
}

func newClientMetrics() *clientMetrics {
	metricsInitOnce.Do(func() {
		cm := &clientMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "peerctl_rpc_requests_total",
				Help: "Total RPC calls by method and outcome.",
			}, []string{"method", "outcome"}),
			dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "peerctl_rpc_dropped_frames_total",
				Help: "Frames discarded by the read loop, by reason.",
			}, []string{"reason"}),
			inflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "peerctl_rpc_inflight_calls",
				Help: "Calls currently awaiting a response.",
			}),
		}
		prometheus.MustRegister(cm.requests, cm.dropped, cm.inflight)
		cm.initMeter()
		sharedMetrics = cm
	})
	return sharedMetrics
}

func (m *clientMetrics) initMeter() {
	meter := otel.GetMeterProvider().Meter("peerctl/rpc")
	counter, err := meter.Int64Counter("peerctl.rpc.requests")
	if err != nil {
		fallback := noop.NewMeterProvider().Meter("peerctl/rpc")
		counter, _ = fallback.Int64Counter("peerctl.rpc.requests")
		meter = fallback
	}
	latency, err := meter.Float64Histogram("peerctl.rpc.latency_ms")
	if err != nil {
		fallback := noop.NewMeterProvider().Meter("peerctl/rpc")
		latency, _ = fallback.Float64Histogram("peerctl.rpc.latency_ms")
		meter = fallback
	}
	m.meter = meter
	m.requestCounter = counter
	m.latencyHistogram = latency
}

func (m *clientMetrics) callStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

func (m *clientMetrics) callFinished(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inflight.Dec()
	if outcome == "" {
		outcome = "unknown"
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	if m.requestCounter != nil {
		m.requestCounter.Add(
			context.Background(),
			1,
			metric.WithAttributes(attribute.String("method", method), attribute.String("outcome", outcome)),
		)
	}
	if m.latencyHistogram != nil {
		m.latencyHistogram.Record(
			context.Background(),
			float64(elapsed)/float64(time.Millisecond),
			metric.WithAttributes(attribute.String("method", method)),
		)
	}
}

func (m *clientMetrics) recordDropped(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.dropped.WithLabelValues(reason).Inc()
}
