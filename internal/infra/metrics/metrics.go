// Package metrics exposes Prometheus metrics for the poll loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeEmpty      = "empty"
	OutcomeSuppressed = "suppressed"
)

// Collector records poll loop metrics in a Prometheus registry.
type Collector struct {
	polls         *prometheus.CounterVec
	notifications *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	cursor        prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_bot_polls_total",
			Help: "Poll iterations by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_bot_notifications_total",
			Help: "Notification attempts by outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "homework_bot_fetch_latency_seconds",
			Help:    "Latency of homework status API requests.",
			Buckets: prometheus.DefBuckets,
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "homework_bot_cursor_seconds",
			Help: "Current from_date cursor as a Unix timestamp.",
		}),
	}

	reg.MustRegister(c.polls, c.notifications, c.fetchLatency, c.cursor)
	return c
}

func (c *Collector) RecordPoll(outcome string) {
	c.polls.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordNotification(outcome string) {
	c.notifications.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordFetchLatency(d time.Duration) {
	c.fetchLatency.Observe(d.Seconds())
}

func (c *Collector) SetCursor(cursor int64) {
	c.cursor.Set(float64(cursor))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
