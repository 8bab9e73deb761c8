// Package metrics exposes Prometheus metrics for command handling.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records command and webhook metrics.
type Collector struct {
	commands     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	openSessions prometheus.Gauge
	webhook      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupbot_commands_total",
			Help: "Chat commands handled, by command and result.",
		}, []string{"command", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "groupbot_command_duration_seconds",
			Help:    "Time spent handling one chat command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "groupbot_open_sessions",
			Help: "Order sessions currently open.",
		}),
		webhook: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupbot_webhook_requests_total",
			Help: "Webhook deliveries by platform and HTTP status.",
		}, []string{"platform", "status_code"}),
	}

	reg.MustRegister(c.commands, c.latency, c.openSessions, c.webhook)
	return c
}

func (c *Collector) RecordCommand(kind, result string, d time.Duration) {
	c.commands.WithLabelValues(kind, result).Inc()
	c.latency.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collector) SetOpenSessions(n int) {
	c.openSessions.Set(float64(n))
}

func (c *Collector) RecordWebhook(platform string, statusCode int) {
	c.webhook.WithLabelValues(platform, strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
