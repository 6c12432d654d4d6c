package prometheus

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DefaultRegistry is the registry the host process exposes.
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer stamps every metric with the service label.
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "synapse"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds the bus and registry instrumentation. It satisfies
// core.Metrics.
type Metrics struct {
	MessagesPublished *prometheus.CounterVec
	MessagesDropped   *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	DeliveryDuration  *prometheus.HistogramVec
	LiveModules       prometheus.Gauge
	ChannelDepth      *prometheus.GaugeVec
}

// GetMetrics returns the process-wide metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics registers the bus metrics with registerer. A nil registerer
// falls back to the default.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		MessagesPublished: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "synapse_bus_messages_published_total",
				Help: "Total number of messages accepted by the bus",
			},
			[]string{"type"},
		),
		MessagesDropped: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "synapse_bus_messages_dropped_total",
				Help: "Total number of messages dropped for lack of subscribers",
			},
			[]string{"type"},
		),
		Deliveries: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "synapse_bus_deliveries_total",
				Help: "Total number of per-subscriber deliveries by outcome",
			},
			[]string{"type", "module", "outcome"},
		),
		DeliveryDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synapse_bus_delivery_duration_seconds",
				Help:    "Subscriber handler duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type", "module"},
		),
		LiveModules: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "synapse_registry_live_modules",
				Help: "Number of live registered modules",
			},
		),
		ChannelDepth: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "synapse_bus_channel_depth",
				Help: "Queued messages per message type channel",
			},
			[]string{"type"},
		),
	}
}

// MessagePublished implements core.Metrics.
func (m *Metrics) MessagePublished(msgType string) {
	m.MessagesPublished.WithLabelValues(msgType).Inc()
}

// MessageDropped implements core.Metrics.
func (m *Metrics) MessageDropped(msgType string) {
	m.MessagesDropped.WithLabelValues(msgType).Inc()
}

// DeliverySucceeded implements core.Metrics.
func (m *Metrics) DeliverySucceeded(msgType, module string, d time.Duration) {
	m.Deliveries.WithLabelValues(msgType, module, "success").Inc()
	m.DeliveryDuration.WithLabelValues(msgType, module).Observe(d.Seconds())
}

// DeliveryFailed implements core.Metrics.
func (m *Metrics) DeliveryFailed(msgType, module string) {
	m.Deliveries.WithLabelValues(msgType, module, "failure").Inc()
}

// SetLiveModules implements core.Metrics.
func (m *Metrics) SetLiveModules(n int) {
	m.LiveModules.Set(float64(n))
}

// SetChannelDepth implements core.Metrics.
func (m *Metrics) SetChannelDepth(msgType string, depth int) {
	m.ChannelDepth.WithLabelValues(msgType).Set(float64(depth))
}

// Handler returns an HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
