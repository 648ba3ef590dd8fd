package fuzzy

import (
	"errors"
	"fmt"

	"fuzzylight/internal/membership"
)

// Variable is a linguistic variable: a named universe with named fuzzy terms.
// A variable becomes read-only once it is handed to a built RuleBase.
type Variable struct {
	name        string
	universe    Universe
	points      []float64
	terms       map[string]membership.Func
	order       []string
	defuzzifier Defuzzifier

	frozen  bool
	samples map[string][]float64
}

type VariableOption func(*Variable)

// WithDefuzzifier selects how aggregated output curves are reduced to a crisp value.
func WithDefuzzifier(d Defuzzifier) VariableOption {
	return func(v *Variable) {
		v.defuzzifier = d
	}
}

// Sample is one grid point of a variable with the degree of every term there.
type Sample struct {
	X       float64
	Degrees map[string]float64
}

// Point is one grid point of a sampled curve.
type Point struct {
	X      float64
	Degree float64
}

func NewVariable(name string, universe Universe, opts ...VariableOption) (*Variable, error) {
	if name == "" {
		return nil, errors.New("variable name is required")
	}
	if err := universe.Validate(); err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	v := &Variable{
		name:        name,
		universe:    universe,
		points:      universe.Points(),
		terms:       make(map[string]membership.Func),
		defuzzifier: Centroid,
	}
	for _, opt := range opts {
		opt(v)
	}
	if !v.defuzzifier.valid() {
		return nil, fmt.Errorf("variable %s: unsupported defuzzifier %q", name, v.defuzzifier)
	}
	return v, nil
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Universe() Universe { return v.universe }

func (v *Variable) Defuzzifier() Defuzzifier { return v.defuzzifier }

// AddTerm registers a named fuzzy term.
func (v *Variable) AddTerm(name string, fn membership.Func) error {
	if v.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, v.name)
	}
	if name == "" {
		return fmt.Errorf("variable %s: term name is required", v.name)
	}
	if fn == nil {
		return fmt.Errorf("variable %s: term %s: membership function is required", v.name, name)
	}
	if _, exists := v.terms[name]; exists {
		return fmt.Errorf("%w: term %s of %s", ErrDuplicate, name, v.name)
	}
	v.terms[name] = fn
	v.order = append(v.order, name)
	return nil
}

// Terms lists term names in insertion order.
func (v *Variable) Terms() []string {
	return append([]string(nil), v.order...)
}

func (v *Variable) Term(name string) (membership.Func, error) {
	fn, ok := v.terms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s of %s", ErrUnknownTerm, name, v.name)
	}
	return fn, nil
}

func (v *Variable) HasTerm(name string) bool {
	_, ok := v.terms[name]
	return ok
}

// Membership evaluates one term at x.
func (v *Variable) Membership(term string, x float64) (float64, error) {
	fn, err := v.Term(term)
	if err != nil {
		return 0, err
	}
	return fn.Evaluate(x), nil
}

// Fuzzify evaluates every term at x.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	out := make(map[string]float64, len(v.terms))
	for name, fn := range v.terms {
		out[name] = fn.Evaluate(x)
	}
	return out
}

func (v *Variable) Contains(x float64) bool {
	return v.universe.Contains(x)
}

// CheckRange returns ErrOutOfRange when x lies outside the universe.
func (v *Variable) CheckRange(x float64) error {
	if !v.universe.Contains(x) {
		return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, v.name, x, v.universe.Min, v.universe.Max)
	}
	return nil
}

// Points returns a copy of the sample grid.
func (v *Variable) Points() []float64 {
	return append([]float64(nil), v.points...)
}

// SampleUniverse evaluates every term at every grid point.
func (v *Variable) SampleUniverse() []Sample {
	out := make([]Sample, len(v.points))
	for i, x := range v.points {
		out[i] = Sample{X: x, Degrees: v.Fuzzify(x)}
	}
	return out
}

// Curve pairs a sampled degree slice with the grid.
func (v *Variable) Curve(degrees []float64) ([]Point, error) {
	if len(degrees) != len(v.points) {
		return nil, fmt.Errorf("variable %s: curve has %d points, universe has %d", v.name, len(degrees), len(v.points))
	}
	out := make([]Point, len(v.points))
	for i, x := range v.points {
		out[i] = Point{X: x, Degree: degrees[i]}
	}
	return out, nil
}

// Defuzzify reduces an aggregated curve sampled on the grid to a crisp value.
func (v *Variable) Defuzzify(curve []float64) (float64, error) {
	if len(curve) != len(v.points) {
		return 0, fmt.Errorf("variable %s: curve has %d points, universe has %d", v.name, len(curve), len(v.points))
	}
	value, err := v.defuzzifier.apply(v.points, curve)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", err, v.name)
	}
	return value, nil
}

func (v *Variable) freeze() {
	if v.frozen {
		return
	}
	v.frozen = true
	v.samples = make(map[string][]float64, len(v.terms))
	for name, fn := range v.terms {
		v.samples[name] = membership.Sample(fn, v.points)
	}
}

func (v *Variable) termSamples(term string) []float64 {
	return v.samples[term]
}
