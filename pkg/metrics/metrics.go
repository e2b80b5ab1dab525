// Package metrics exposes prometheus counters for field attachment and form
// projection. A nil *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Collector groups the counters emitted by this module.
type Collector struct {
	fieldOperations *prometheus.CounterVec
	projections     *prometheus.CounterVec
}

// New creates a Collector and registers it with reg. A nil registerer leaves
// the counters unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		fieldOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seoform",
			Name:      "field_operations_total",
			Help:      "Field attach/detach operations by outcome.",
		}, []string{"operation", "result"}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seoform",
			Name:      "projections_total",
			Help:      "Form settings projections by outcome.",
		}, []string{"result"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, collector := range []prometheus.Collector{c.fieldOperations, c.projections} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FieldOperation counts an attach or detach outcome.
func (c *Collector) FieldOperation(operation, result string) {
	if c == nil {
		return
	}
	c.fieldOperations.WithLabelValues(operation, result).Inc()
}

// Projection counts a projector run outcome.
func (c *Collector) Projection(result string) {
	if c == nil {
		return
	}
	c.projections.WithLabelValues(result).Inc()
}
