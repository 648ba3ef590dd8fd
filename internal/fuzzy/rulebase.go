package fuzzy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Builder collects variables and rules and validates them into a RuleBase.
type Builder struct {
	inputs  []*Variable
	outputs []*Variable
	rules   []Rule
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Input(v *Variable) *Builder {
	b.inputs = append(b.inputs, v)
	return b
}

func (b *Builder) Output(v *Variable) *Builder {
	b.outputs = append(b.outputs, v)
	return b
}

// Rule appends a rule. Rules without an ID are numbered by position ("rule1", ...).
func (b *Builder) Rule(r Rule) *Builder {
	b.rules = append(b.rules, r)
	return b
}

// RuleBase is an immutable set of variables and rules. It is safe for
// concurrent use by any number of sessions.
type RuleBase struct {
	inputs     []*Variable
	outputs    []*Variable
	byName     map[string]*Variable
	isOutput   map[string]bool
	rules      []Rule
	ruleIndex  map[string]int
	referenced []string
}

func (b *Builder) Build() (*RuleBase, error) {
	if len(b.inputs) == 0 {
		return nil, errors.New("rule base needs at least one input variable")
	}
	if len(b.outputs) == 0 {
		return nil, errors.New("rule base needs at least one output variable")
	}

	rb := &RuleBase{
		inputs:    append([]*Variable(nil), b.inputs...),
		outputs:   append([]*Variable(nil), b.outputs...),
		byName:    make(map[string]*Variable, len(b.inputs)+len(b.outputs)),
		isOutput:  make(map[string]bool, len(b.outputs)),
		ruleIndex: make(map[string]int, len(b.rules)),
	}
	inputs := make(map[string]*Variable, len(b.inputs))
	for _, v := range b.inputs {
		if err := rb.register(v); err != nil {
			return nil, err
		}
		inputs[v.name] = v
	}
	for _, v := range b.outputs {
		if err := rb.register(v); err != nil {
			return nil, err
		}
		rb.isOutput[v.name] = true
	}

	referenced := make(map[string]struct{})
	for i, r := range b.rules {
		id := r.ID
		if id == "" {
			id = "rule" + strconv.Itoa(i+1)
		}
		if _, exists := rb.ruleIndex[id]; exists {
			return nil, fmt.Errorf("%w: rule %s", ErrDuplicate, id)
		}
		if r.Antecedent == nil {
			return nil, fmt.Errorf("rule %s: antecedent is required", id)
		}
		if len(r.Consequents) == 0 {
			return nil, fmt.Errorf("rule %s: at least one consequent is required", id)
		}
		antecedent, err := bind(r.Antecedent, inputs)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", id, err)
		}
		for _, c := range r.Consequents {
			if !rb.isOutput[c.Variable] {
				return nil, fmt.Errorf("rule %s: %w: output %s", id, ErrUnknownVariable, c.Variable)
			}
			if !rb.byName[c.Variable].HasTerm(c.Term) {
				return nil, fmt.Errorf("rule %s: %w: %s of %s", id, ErrUnknownTerm, c.Term, c.Variable)
			}
		}
		for _, name := range Inputs(antecedent) {
			referenced[name] = struct{}{}
		}
		rb.ruleIndex[id] = len(rb.rules)
		rb.rules = append(rb.rules, Rule{
			ID:          id,
			Label:       r.Label,
			Antecedent:  antecedent,
			Consequents: append([]Consequent(nil), r.Consequents...),
		})
	}

	for name := range referenced {
		rb.referenced = append(rb.referenced, name)
	}
	sort.Strings(rb.referenced)
	for _, v := range rb.byName {
		v.freeze()
	}
	return rb, nil
}

func (rb *RuleBase) register(v *Variable) error {
	if v == nil {
		return errors.New("nil variable")
	}
	if _, exists := rb.byName[v.name]; exists {
		return fmt.Errorf("%w: variable %s", ErrDuplicate, v.name)
	}
	rb.byName[v.name] = v
	return nil
}

func (rb *RuleBase) Inputs() []*Variable {
	return append([]*Variable(nil), rb.inputs...)
}

func (rb *RuleBase) Outputs() []*Variable {
	return append([]*Variable(nil), rb.outputs...)
}

func (rb *RuleBase) Rules() []Rule {
	return append([]Rule(nil), rb.rules...)
}

// ReferencedInputs lists the input variables used by at least one antecedent.
func (rb *RuleBase) ReferencedInputs() []string {
	return append([]string(nil), rb.referenced...)
}

func (rb *RuleBase) Variable(name string) (*Variable, error) {
	v, ok := rb.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return v, nil
}

// Input resolves an input variable by name.
func (rb *RuleBase) Input(name string) (*Variable, error) {
	v, ok := rb.byName[name]
	if !ok || rb.isOutput[name] {
		return nil, fmt.Errorf("%w: input %s", ErrUnknownVariable, name)
	}
	return v, nil
}

// Output resolves an output variable by name.
func (rb *RuleBase) Output(name string) (*Variable, error) {
	if !rb.isOutput[name] {
		return nil, fmt.Errorf("%w: output %s", ErrUnknownVariable, name)
	}
	return rb.byName[name], nil
}

// Result holds one inference pass.
type Result struct {
	Outputs     map[string]float64
	Aggregates  map[string][]float64
	Activations []Activation
	Empty       []string
}

// CheckInputs verifies every referenced input is bound and in range.
func (rb *RuleBase) CheckInputs(b Bindings) error {
	var missing []string
	for _, name := range rb.referenced {
		x, ok := b[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if err := rb.byName[name].CheckRange(x); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}
	return nil
}

// Infer runs fuzzification, rule evaluation, min-implication, max-aggregation
// and defuzzification. When some outputs received no activation the returned
// Result still carries the other outputs and the error is an *EmptyAggregateError.
func (rb *RuleBase) Infer(b Bindings) (*Result, error) {
	if err := rb.CheckInputs(b); err != nil {
		return nil, err
	}

	res := &Result{
		Outputs:     make(map[string]float64, len(rb.outputs)),
		Aggregates:  make(map[string][]float64, len(rb.outputs)),
		Activations: make([]Activation, len(rb.rules)),
	}
	for _, v := range rb.outputs {
		res.Aggregates[v.name] = make([]float64, len(v.points))
	}

	for i, r := range rb.rules {
		strength, err := r.FiringStrength(b)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		res.Activations[i] = Activation{RuleID: r.ID, Label: r.Label, Strength: strength}
		if strength <= 0 {
			continue
		}
		for _, c := range r.Consequents {
			aggregateInto(res.Aggregates[c.Variable], strength, rb.byName[c.Variable].termSamples(c.Term))
		}
	}

	for _, v := range rb.outputs {
		value, err := v.Defuzzify(res.Aggregates[v.name])
		if err != nil {
			if errors.Is(err, ErrEmptyAggregate) {
				res.Empty = append(res.Empty, v.name)
				continue
			}
			return nil, err
		}
		res.Outputs[v.name] = value
	}
	if len(res.Empty) > 0 {
		return res, &EmptyAggregateError{Variables: append([]string(nil), res.Empty...)}
	}
	return res, nil
}

// RuleOutput is the firing strength of one rule and the implied curve of
// each of its consequents.
type RuleOutput struct {
	Strength float64
	Implied  map[Consequent][]float64
}

// Imply evaluates a single rule without aggregation.
func (rb *RuleBase) Imply(ruleID string, b Bindings) (RuleOutput, error) {
	idx, ok := rb.ruleIndex[ruleID]
	if !ok {
		return RuleOutput{}, fmt.Errorf("unknown rule %s", ruleID)
	}
	r := rb.rules[idx]
	strength, err := r.FiringStrength(b)
	if err != nil {
		return RuleOutput{}, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	out := RuleOutput{Strength: strength, Implied: make(map[Consequent][]float64, len(r.Consequents))}
	for _, c := range r.Consequents {
		out.Implied[c] = Implied(strength, rb.byName[c.Variable].termSamples(c.Term))
	}
	return out, nil
}
