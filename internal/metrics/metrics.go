// Package metrics - счетчики prometheus для загрузки лент и запросов к фидам.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airportfeed"

type Metrics struct {
	registry *prometheus.Registry

	SourceFetches  *prometheus.CounterVec
	Records        *prometheus.CounterVec
	IngestRuns     *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	FeedRequests   *prometheus.CounterVec
}

// Метрики регистрируются в собственном реестре, глобальный не трогаем
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Feed source fetches by status.",
		}, []string{"status"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "News records seen during ingestion by stage (parsed, new, inserted).",
		}, []string{"stage"}),
		IngestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by status.",
		}, []string{"status"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a full ingestion run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Airport feed requests by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SourceFetches,
		m.Records,
		m.IngestRuns,
		m.IngestDuration,
		m.FeedRequests,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
