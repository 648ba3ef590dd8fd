package fuzzy

import (
	"math"
	"strconv"
	"strings"
)

// Consequent names the output term a rule implies.
type Consequent struct {
	Variable string
	Term     string
}

func (c Consequent) String() string {
	return c.Variable + " is " + strconv.Quote(c.Term)
}

// Rule is IF Antecedent THEN Consequents.
type Rule struct {
	ID          string
	Label       string
	Antecedent  Expr
	Consequents []Consequent
}

// FiringStrength evaluates the antecedent against b.
func (r Rule) FiringStrength(b Bindings) (float64, error) {
	return r.Antecedent.Evaluate(b)
}

func (r Rule) String() string {
	parts := make([]string, len(r.Consequents))
	for i, c := range r.Consequents {
		parts[i] = c.String()
	}
	return "IF " + r.Antecedent.String() + " THEN " + strings.Join(parts, " AND ")
}

// Activation is the firing strength one rule reached for an input tuple.
type Activation struct {
	RuleID   string
	Label    string
	Strength float64
}

// Implied writes min(strength, term(u)) for every grid sample of the consequent term.
func Implied(strength float64, termSamples []float64) []float64 {
	out := make([]float64, len(termSamples))
	for i, mu := range termSamples {
		out[i] = math.Min(strength, mu)
	}
	return out
}

// aggregateInto raises agg to max(agg, min(strength, term(u))) point by point.
func aggregateInto(agg []float64, strength float64, termSamples []float64) {
	for i, mu := range termSamples {
		implied := math.Min(strength, mu)
		if implied > agg[i] {
			agg[i] = implied
		}
	}
}
