// Package metrics declares the Prometheus metrics of the inference engine.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fuzzylight/internal/fuzzy"
)

const (
	EvaluationsH        = "The total number of completed evaluations"
	EvaluationsN        = "fuzzylight_evaluations_total"
	EvaluationFailuresH = "The total number of evaluations that failed, by kind"
	EvaluationFailuresN = "fuzzylight_evaluation_failures_total"
	RuleActivationsH    = "The total number of evaluations in which a rule fired"
	RuleActivationsN    = "fuzzylight_rule_activations_total"
	EvaluationSecondsH  = "Wall time of a single evaluation"
	EvaluationSecondsN  = "fuzzylight_evaluation_seconds"
)

// Failure kinds.
const (
	KindOutOfRange      = "out_of_range"
	KindMissingInput    = "missing_input"
	KindUnknownVariable = "unknown_variable"
	KindEmptyAggregate  = "empty_aggregate"
	KindOther           = "other"
)

type Engine struct {
	evaluations     prometheus.Counter
	failures        *prometheus.CounterVec
	ruleActivations *prometheus.CounterVec
	duration        prometheus.Histogram
}

// NewEngine registers the engine metrics with reg. A nil reg creates
// unregistered collectors.
func NewEngine(reg prometheus.Registerer) *Engine {
	f := promauto.With(reg)
	return &Engine{
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Name: EvaluationsN,
			Help: EvaluationsH,
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: EvaluationFailuresN,
			Help: EvaluationFailuresH,
		}, []string{"kind"}),
		ruleActivations: f.NewCounterVec(prometheus.CounterOpts{
			Name: RuleActivationsN,
			Help: RuleActivationsH,
		}, []string{"rule"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    EvaluationSecondsN,
			Help:    EvaluationSecondsH,
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

// Observe records one evaluation. A nil receiver is a no-op.
func (m *Engine) Observe(elapsed time.Duration, activations []fuzzy.Activation, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	for _, a := range activations {
		if a.Strength > 0 {
			m.ruleActivations.WithLabelValues(a.RuleID).Inc()
		}
	}
	if err != nil {
		m.failures.WithLabelValues(FailureKind(err)).Inc()
		return
	}
	m.evaluations.Inc()
}

// FailureKind classifies an evaluation error for the failures counter.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, fuzzy.ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, fuzzy.ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, fuzzy.ErrUnknownVariable):
		return KindUnknownVariable
	case errors.Is(err, fuzzy.ErrEmptyAggregate):
		return KindEmptyAggregate
	default:
		return KindOther
	}
}
