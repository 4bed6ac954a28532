// Package metrics exposes the queue's bucket sizes and task outcomes
// as prometheus instruments. Registration is optional: a run with no
// --metrics-addr simply never calls New, and every recording
// method on a nil *Registry is a no-op, so the runner and task queue
// never need a feature-flag branch of their own.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every instrument this repo emits.
type Registry struct {
	bucketSize    *prometheus.GaugeVec
	taskOutcomes  *prometheus.CounterVec
	tasksInFlight prometheus.Gauge
}

// New builds a Registry without registering it anywhere; call Serve
// to expose it over HTTP.
func New() *Registry {
	return &Registry{
		bucketSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scoutqueue",
			Name:      "bucket_size",
			Help:      "Number of task specs currently in each bucket.",
		}, []string{"bucket"}),
		taskOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoutqueue",
			Name:      "task_outcomes_total",
			Help:      "Count of task lifecycle outcomes by kind.",
		}, []string{"outcome"}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scoutqueue",
			Name:      "tasks_in_flight",
			Help:      "Number of tasks currently executing.",
		}),
	}
}

// MustRegister registers every instrument against a fresh prometheus
// registry, returning an http.Handler that serves them.
func (r *Registry) MustRegister() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(r.bucketSize, r.taskOutcomes, r.tasksInFlight)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr and blocks
// until it fails; callers typically run it in a goroutine.
func (r *Registry) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.MustRegister())
	return http.ListenAndServe(addr, mux)
}

// SetBucketSize records the current size of one bucket
// (unresolved/resolved/errored/archived).
func (r *Registry) SetBucketSize(bucket string, size int) {
	if r == nil {
		return
	}
	r.bucketSize.WithLabelValues(bucket).Set(float64(size))
}

// IncTaskOutcome records one task reaching outcome (resolved,
// retried, narrowed, archived, cancelled).
func (r *Registry) IncTaskOutcome(outcome string) {
	if r == nil {
		return
	}
	r.taskOutcomes.WithLabelValues(outcome).Inc()
}

// SetTasksInFlight records the dispatcher's current in-flight count.
func (r *Registry) SetTasksInFlight(n int) {
	if r == nil {
		return
	}
	r.tasksInFlight.Set(float64(n))
}
