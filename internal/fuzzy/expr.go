package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"fuzzylight/internal/membership"
)

// Bindings maps input variable names to crisp values.
type Bindings map[string]float64

// Expr is a fuzzy proposition over input terms.
type Expr interface {
	Evaluate(b Bindings) (float64, error)
	String() string
}

// TermExpr is the leaf proposition "variable is term".
type TermExpr struct {
	Variable string
	Name     string

	fn membership.Func
}

// AndExpr is the fuzzy conjunction min(Left, Right).
type AndExpr struct {
	Left, Right Expr
}

// OrExpr is the fuzzy disjunction max(Left, Right).
type OrExpr struct {
	Left, Right Expr
}

// NotExpr is the fuzzy complement 1 - Inner.
type NotExpr struct {
	Inner Expr
}

// Is builds the leaf proposition "variable is term".
func Is(variable, term string) *TermExpr {
	return &TermExpr{Variable: variable, Name: term}
}

// And folds its operands left to right: And(a, b, c) == (a AND b) AND c.
func And(a, b Expr, more ...Expr) Expr {
	var out Expr = &AndExpr{Left: a, Right: b}
	for _, next := range more {
		out = &AndExpr{Left: out, Right: next}
	}
	return out
}

// Or folds its operands left to right: Or(a, b, c) == (a OR b) OR c.
func Or(a, b Expr, more ...Expr) Expr {
	var out Expr = &OrExpr{Left: a, Right: b}
	for _, next := range more {
		out = &OrExpr{Left: out, Right: next}
	}
	return out
}

func Not(inner Expr) Expr {
	return &NotExpr{Inner: inner}
}

func (t *TermExpr) Evaluate(b Bindings) (float64, error) {
	if t.fn == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnboundTerm, t)
	}
	x, ok := b[t.Variable]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingInput, t.Variable)
	}
	return t.fn.Evaluate(x), nil
}

func (t *TermExpr) String() string {
	return t.Variable + " is " + strconv.Quote(t.Name)
}

func (e *AndExpr) Evaluate(b Bindings) (float64, error) {
	l, r, err := evaluatePair(e.Left, e.Right, b)
	if err != nil {
		return 0, err
	}
	return math.Min(l, r), nil
}

func (e *AndExpr) String() string {
	return group(e.Left, "AND") + " AND " + group(e.Right, "AND")
}

func (e *OrExpr) Evaluate(b Bindings) (float64, error) {
	l, r, err := evaluatePair(e.Left, e.Right, b)
	if err != nil {
		return 0, err
	}
	return math.Max(l, r), nil
}

func (e *OrExpr) String() string {
	return group(e.Left, "OR") + " OR " + group(e.Right, "OR")
}

func (e *NotExpr) Evaluate(b Bindings) (float64, error) {
	v, err := e.Inner.Evaluate(b)
	if err != nil {
		return 0, err
	}
	return 1 - v, nil
}

func (e *NotExpr) String() string {
	if _, ok := e.Inner.(*TermExpr); ok {
		return "NOT " + e.Inner.String()
	}
	return "NOT (" + e.Inner.String() + ")"
}

func evaluatePair(left, right Expr, b Bindings) (float64, float64, error) {
	l, err := left.Evaluate(b)
	if err != nil {
		return 0, 0, err
	}
	r, err := right.Evaluate(b)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

// group parenthesises a child whose operator differs from its parent's.
func group(e Expr, parent string) string {
	switch e.(type) {
	case *AndExpr:
		if parent != "AND" {
			return "(" + e.String() + ")"
		}
	case *OrExpr:
		if parent != "OR" {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

// Inputs lists the distinct variables referenced by e, sorted by name.
func Inputs(e Expr) []string {
	seen := make(map[string]struct{})
	walkTerms(e, func(t *TermExpr) {
		seen[t.Variable] = struct{}{}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func walkTerms(e Expr, visit func(*TermExpr)) {
	switch node := e.(type) {
	case *TermExpr:
		visit(node)
	case *AndExpr:
		walkTerms(node.Left, visit)
		walkTerms(node.Right, visit)
	case *OrExpr:
		walkTerms(node.Left, visit)
		walkTerms(node.Right, visit)
	case *NotExpr:
		walkTerms(node.Inner, visit)
	}
}

// bind returns a copy of e whose terms resolve against vars.
func bind(e Expr, vars map[string]*Variable) (Expr, error) {
	switch node := e.(type) {
	case nil:
		return nil, fmt.Errorf("nil expression")
	case *TermExpr:
		v, ok := vars[node.Variable]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, node.Variable)
		}
		fn, err := v.Term(node.Name)
		if err != nil {
			return nil, err
		}
		return &TermExpr{Variable: node.Variable, Name: node.Name, fn: fn}, nil
	case *AndExpr:
		l, r, err := bindPair(node.Left, node.Right, vars)
		if err != nil {
			return nil, err
		}
		return &AndExpr{Left: l, Right: r}, nil
	case *OrExpr:
		l, r, err := bindPair(node.Left, node.Right, vars)
		if err != nil {
			return nil, err
		}
		return &OrExpr{Left: l, Right: r}, nil
	case *NotExpr:
		inner, err := bind(node.Inner, vars)
		if err != nil {
			return nil, err
		}
		return &NotExpr{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("unsupported expression type %T", e)
	}
}

func bindPair(left, right Expr, vars map[string]*Variable) (Expr, Expr, error) {
	l, err := bind(left, vars)
	if err != nil {
		return nil, nil, err
	}
	r, err := bind(right, vars)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}
