// Package metrics defines the Prometheus collectors for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recipepipe"

// Metrics holds the pipeline collectors.
type Metrics struct {
	ExtractTierTotal       *prometheus.CounterVec
	ExtractFailuresTotal   prometheus.Counter
	JSONLDBlockErrorsTotal prometheus.Counter
	FetchDurationSeconds   *prometheus.HistogramVec
	ImportsTotal           *prometheus.CounterVec
}

// New creates and registers the collectors on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ExtractTierTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "tier_total",
			Help:      "Recipes extracted, by the tier that produced them",
		}, []string{"tier"}),
		ExtractFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "failures_total",
			Help:      "Pages from which no recipe could be extracted",
		}),
		JSONLDBlockErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "jsonld_block_errors_total",
			Help:      "Malformed JSON-LD blocks skipped during extraction",
		}),
		FetchDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Page fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "total",
			Help:      "Import attempts, by outcome",
		}, []string{"outcome"}),
	}
}

// TierSucceeded counts a recipe produced by tier.
func (m *Metrics) TierSucceeded(tier string) {
	m.ExtractTierTotal.WithLabelValues(tier).Inc()
}

// ExtractionFailed counts a page with no recoverable recipe.
func (m *Metrics) ExtractionFailed() {
	m.ExtractFailuresTotal.Inc()
}

// JSONLDBlockFailed counts a skipped JSON-LD block.
func (m *Metrics) JSONLDBlockFailed() {
	m.JSONLDBlockErrorsTotal.Inc()
}

// ObserveFetch records how long a fetch took.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// ImportFinished counts an import by outcome ("ok", "invalid_url",
// "fetch_error", "extract_error", "store_error").
func (m *Metrics) ImportFinished(outcome string) {
	m.ImportsTotal.WithLabelValues(outcome).Inc()
}
