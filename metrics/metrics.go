package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "hoursync"

// Metrics counts one sync run. All methods are safe on a nil receiver so
// callers can run without metrics.
type Metrics struct {
	registry       *prometheus.Registry
	fetchedEntries prometheus.Counter
	deliveries     *prometheus.CounterVec
	rateLimited    prometheus.Counter
	retryWait      prometheus.Counter
	syncedSeconds  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_entries_total",
			Help:      "Time entries kept after project and duration filtering.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_deliveries_total",
			Help:      "Day summaries submitted to the sink by result.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Sink responses with status 429.",
		}),
		retryWait: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_wait_seconds_total",
			Help:      "Time spent waiting for Retry-After.",
		}),
		syncedSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synced_seconds_total",
			Help:      "Tracked seconds delivered to the sink.",
		}),
	}

	m.registry.MustRegister(
		m.fetchedEntries,
		m.deliveries,
		m.rateLimited,
		m.retryWait,
		m.syncedSeconds,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) EntriesFetched(count int) {
	if m == nil {
		return
	}
	m.fetchedEntries.Add(float64(count))
}

func (m *Metrics) DayDelivered(seconds int64) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues("success").Inc()
	m.syncedSeconds.Add(float64(seconds))
}

func (m *Metrics) DayFailed() {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues("failure").Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) RetryWaited(wait float64) {
	if m == nil {
		return
	}
	m.retryWait.Add(wait)
}

// Push sends the collected counters to a Pushgateway. An empty URL is a no-op.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if m == nil || strings.TrimSpace(gatewayURL) == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(m.Registry()).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
