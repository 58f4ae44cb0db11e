package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the dispatcher's Prometheus metrics.
type Collector struct {
	// Triggers counts lifecycle triggers, including the zero-handler fast
	// path.
	Triggers *prometheus.CounterVec

	// AutoCompletions counts triggers completed by the dispatcher because
	// no handler adopted.
	AutoCompletions *prometheus.CounterVec

	// Adoptions counts triggers where a handler took over completion.
	Adoptions *prometheus.CounterVec

	// Completions counts continuation invocations that reached the
	// framework.
	Completions *prometheus.CounterVec

	// DuplicateCompletions counts dropped extra continuation invocations
	// (handler contract violations).
	DuplicateCompletions *prometheus.CounterVec
}

// NewCollector registers the dispatcher metrics with the default registry.
func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers the dispatcher metrics with the given
// registerer. Tests pass a fresh prometheus.NewRegistry().
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	labels := []string{"lifecycle"}

	return &Collector{
		Triggers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelkit",
				Name:      "lifecycle_triggers_total",
				Help:      "Total number of lifecycle triggers",
			},
			labels,
		),
		AutoCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelkit",
				Name:      "lifecycle_auto_completions_total",
				Help:      "Triggers completed by the dispatcher because no handler adopted",
			},
			labels,
		),
		Adoptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelkit",
				Name:      "lifecycle_adoptions_total",
				Help:      "Triggers where a handler assumed responsibility for completion",
			},
			labels,
		),
		Completions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelkit",
				Name:      "lifecycle_completions_total",
				Help:      "Continuation invocations delivered to the framework",
			},
			labels,
		),
		DuplicateCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelkit",
				Name:      "lifecycle_duplicate_completions_total",
				Help:      "Extra continuation invocations dropped as handler misuse",
			},
			labels,
		),
	}
}
