// Package session binds crisp inputs to a shared rule base and exposes the
// crisp outputs of the last inference pass.
//
// A Session is not safe for concurrent use; create one per goroutine. Any
// number of sessions may share a single *fuzzy.RuleBase.
package session

import (
	"errors"
	"fmt"

	"fuzzylight/internal/fuzzy"
)

type State int

const (
	StateCreated State = iota
	StateInputsBound
	StateComputed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInputsBound:
		return "inputs_bound"
	case StateComputed:
		return "computed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Session struct {
	base   *fuzzy.RuleBase
	inputs fuzzy.Bindings
	result *fuzzy.Result
	state  State
}

func New(base *fuzzy.RuleBase) *Session {
	return &Session{
		base:   base,
		inputs: make(fuzzy.Bindings),
	}
}

func (s *Session) RuleBase() *fuzzy.RuleBase { return s.base }

func (s *Session) State() State { return s.state }

// SetInput binds a crisp value to an input variable. Unknown names and values
// outside the universe are rejected and leave the session untouched.
func (s *Session) SetInput(name string, value float64) error {
	v, err := s.base.Input(name)
	if err != nil {
		return err
	}
	if err := v.CheckRange(value); err != nil {
		return err
	}
	s.inputs[name] = value
	s.state = StateInputsBound
	return nil
}

// SetInputs binds several inputs at once; either all are applied or none.
func (s *Session) SetInputs(values map[string]float64) error {
	for name, value := range values {
		v, err := s.base.Input(name)
		if err != nil {
			return err
		}
		if err := v.CheckRange(value); err != nil {
			return err
		}
	}
	for name, value := range values {
		s.inputs[name] = value
	}
	if len(values) > 0 {
		s.state = StateInputsBound
	}
	return nil
}

func (s *Session) Input(name string) (float64, bool) {
	v, ok := s.inputs[name]
	return v, ok
}

// Inputs returns a copy of the current bindings.
func (s *Session) Inputs() map[string]float64 {
	out := make(map[string]float64, len(s.inputs))
	for k, v := range s.inputs {
		out[k] = v
	}
	return out
}

// Compute runs a full inference pass over the current inputs. Missing inputs
// abort the pass and keep the previous result. An empty aggregate still
// completes the pass; the affected outputs report ErrEmptyAggregate.
func (s *Session) Compute() error {
	res, err := s.base.Infer(s.inputs)
	if err != nil && !errors.Is(err, fuzzy.ErrEmptyAggregate) {
		return err
	}
	s.result = res
	s.state = StateComputed
	return err
}

// Output returns the crisp value of an output variable from the last Compute.
func (s *Session) Output(name string) (float64, error) {
	if _, err := s.base.Output(name); err != nil {
		return 0, err
	}
	if s.result == nil {
		return 0, fmt.Errorf("%w: %s", fuzzy.ErrNotComputed, name)
	}
	value, ok := s.result.Outputs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", fuzzy.ErrEmptyAggregate, name)
	}
	return value, nil
}

// Outputs returns every defuzzified output of the last Compute.
func (s *Session) Outputs() (map[string]float64, error) {
	if s.result == nil {
		return nil, fuzzy.ErrNotComputed
	}
	out := make(map[string]float64, len(s.result.Outputs))
	for k, v := range s.result.Outputs {
		out[k] = v
	}
	return out, nil
}

// AggregatedCurve returns the aggregated membership of an output variable
// from the last Compute, paired with its universe grid.
func (s *Session) AggregatedCurve(name string) ([]fuzzy.Point, error) {
	v, err := s.base.Output(name)
	if err != nil {
		return nil, err
	}
	if s.result == nil {
		return nil, fmt.Errorf("%w: %s", fuzzy.ErrNotComputed, name)
	}
	return v.Curve(s.result.Aggregates[name])
}

// Activations returns the firing strength of every rule in rule order.
func (s *Session) Activations() ([]fuzzy.Activation, error) {
	if s.result == nil {
		return nil, fuzzy.ErrNotComputed
	}
	return append([]fuzzy.Activation(nil), s.result.Activations...), nil
}

// Empty lists the outputs whose aggregate was zero in the last Compute.
func (s *Session) Empty() []string {
	if s.result == nil {
		return nil
	}
	return append([]string(nil), s.result.Empty...)
}

// Reset clears inputs and outputs.
func (s *Session) Reset() {
	s.inputs = make(fuzzy.Bindings)
	s.result = nil
	s.state = StateCreated
}
