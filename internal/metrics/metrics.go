// Package metrics exposes Prometheus instrumentation for content gap runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "content_gap"

// Observer records fetch and analysis outcomes. It satisfies gap.Observer.
type Observer struct {
	fetches          *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Ranked keyword fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and building one domain dataset.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Content gap analyses by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis time.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
	}

	for _, c := range []prometheus.Collector{o.fetches, o.fetchDuration, o.analyses, o.analysisDuration} {
		if err := reg.Register(c); err != nil {
			return nil, eris.Wrap(err, "metrics: register collector")
		}
	}
	return o, nil
}

// ObserveFetch records one domain fetch. Domains are not used as labels.
func (o *Observer) ObserveFetch(_ string, outcome string, elapsed time.Duration) {
	o.fetches.WithLabelValues(outcome).Inc()
	o.fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveAnalysis records one completed or failed analysis.
func (o *Observer) ObserveAnalysis(outcome string, elapsed time.Duration) {
	o.analyses.WithLabelValues(outcome).Inc()
	o.analysisDuration.Observe(elapsed.Seconds())
}

// RegisterCost exposes the provider spend reported by cost as a gauge
// read on every scrape.
func RegisterCost(reg prometheus.Registerer, cost func() float64) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "provider_cost",
		Help:      "Accumulated ranking-data provider cost reported by the API.",
	}, cost)
	return eris.Wrap(reg.Register(g), "metrics: register cost gauge")
}
