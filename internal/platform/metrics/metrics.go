package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec // route, method, status labels
	HTTPDuration *prometheus.HistogramVec

	TfLRequests *prometheus.CounterVec // endpoint, outcome labels
	TfLDuration prometheus.Histogram
	TfLRetries  prometheus.Counter

	SequenceCacheHits   prometheus.Counter
	SequenceCacheMisses prometheus.Counter

	RoutesWritten *prometheus.CounterVec // kind label: created|updated|deleted

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bussd_http_requests_total",
			Help: "HTTP requests served, by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bussd_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"route"}),
		TfLRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bussd_tfl_requests_total",
			Help: "Calls to the TfL unified API, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		TfLDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bussd_tfl_request_duration_seconds",
			Help:    "Latency of TfL unified API calls including retries.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		TfLRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bussd_tfl_retries_total",
			Help: "Retried TfL requests.",
		}),
		SequenceCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bussd_sequence_cache_hits_total",
			Help: "Line sequences served from cache.",
		}),
		SequenceCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bussd_sequence_cache_misses_total",
			Help: "Line sequences not found in cache.",
		}),
		RoutesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bussd_routes_written_total",
			Help: "Route records written, by kind of change.",
		}, []string{"kind"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bussd_nats_published_total",
			Help: "Total route events published to NATS.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bussd_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bussd_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.TfLRequests, c.TfLDuration, c.TfLRetries,
		c.SequenceCacheHits, c.SequenceCacheMisses,
		c.RoutesWritten,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(route, method string, status int, dur time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(route).Observe(dur.Seconds())
}
