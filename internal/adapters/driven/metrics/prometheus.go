// Package metrics records pipeline activity with Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Metrics = (*Prometheus)(nil)

// Prometheus implements driven.Metrics on its own registry, so several
// pipelines can live in one process without colliding.
type Prometheus struct {
	registry       *prometheus.Registry
	asks           *prometheus.CounterVec
	askDuration    prometheus.Histogram
	retrieved      prometheus.Histogram
	providerErrors *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them together with
// the Go runtime and process collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		asks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperchat_asks_total",
			Help: "Questions answered, by outcome.",
		}, []string{"outcome"}),
		askDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paperchat_ask_duration_seconds",
			Help:    "Time taken to answer a question.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		retrieved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paperchat_retrieved_chunks",
			Help:    "Chunks retrieved per question.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperchat_provider_errors_total",
			Help: "Failed embedding and language-model calls, by kind.",
		}, []string{"kind"}),
	}

	p.registry.MustRegister(
		p.asks,
		p.askDuration,
		p.retrieved,
		p.providerErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveAsk records a finished ask.
func (p *Prometheus) ObserveAsk(outcome string, elapsed time.Duration) {
	p.asks.WithLabelValues(outcome).Inc()
	p.askDuration.Observe(elapsed.Seconds())
}

// ObserveRetrieved records the size of a retrieved set.
func (p *Prometheus) ObserveRetrieved(n int) {
	p.retrieved.Observe(float64(n))
}

// ObserveProviderError records a failed provider call.
func (p *Prometheus) ObserveProviderError(kind string) {
	p.providerErrors.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
