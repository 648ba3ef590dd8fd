package fuzzy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzylight/internal/membership"
)

func boundTerm(variable, name string, fn membership.Func) *TermExpr {
	return &TermExpr{Variable: variable, Name: name, fn: fn}
}

func TestOperatorsFollowMinMaxComplement(t *testing.T) {
	a := boundTerm("x", "a", membership.Triangular{A: 0, B: 10, C: 20})
	b := boundTerm("y", "b", membership.Trapezoidal{A: 0, B: 5, C: 10, D: 15})

	for _, in := range []Bindings{
		{"x": 3, "y": 12},
		{"x": 10, "y": 1},
		{"x": 25, "y": 7},
		{"x": 17.5, "y": 14},
	} {
		va, err := a.Evaluate(in)
		require.NoError(t, err)
		vb, err := b.Evaluate(in)
		require.NoError(t, err)

		and, err := And(a, b).Evaluate(in)
		require.NoError(t, err)
		assert.Equal(t, math.Min(va, vb), and, "%v", in)

		or, err := Or(a, b).Evaluate(in)
		require.NoError(t, err)
		assert.Equal(t, math.Max(va, vb), or, "%v", in)

		not, err := Not(a).Evaluate(in)
		require.NoError(t, err)
		assert.Equal(t, 1-va, not, "%v", in)

		again, err := And(a, b).Evaluate(in)
		require.NoError(t, err)
		assert.Equal(t, and, again)
	}
}

func TestVariadicOperatorsFoldLeft(t *testing.T) {
	a, b, c := Is("x", "a"), Is("x", "b"), Is("x", "c")

	and := And(a, b, c).(*AndExpr)
	inner, ok := and.Left.(*AndExpr)
	require.True(t, ok)
	assert.Same(t, a, inner.Left)
	assert.Same(t, b, inner.Right)
	assert.Same(t, c, and.Right)

	or := Or(a, b, c).(*OrExpr)
	_, ok = or.Left.(*OrExpr)
	assert.True(t, ok)
}

func TestNestedGroupsEvaluateInnerFirst(t *testing.T) {
	low := boundTerm("x", "low", membership.Triangular{A: 0, B: 0, C: 10})
	high := boundTerm("x", "high", membership.Triangular{A: 0, B: 10, C: 10})
	busy := boundTerm("y", "busy", membership.Triangular{A: 0, B: 10, C: 10})

	in := Bindings{"x": 2, "y": 5}
	got, err := And(Or(low, high), Not(busy)).Evaluate(in)
	require.NoError(t, err)
	// max(0.8, 0.2) AND (1 - 0.5)
	assert.InDelta(t, 0.5, got, 1e-12)

	got, err = Or(And(low, busy), high).Evaluate(in)
	require.NoError(t, err)
	// max(min(0.8, 0.5), 0.2)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestEvaluateMissingBinding(t *testing.T) {
	a := boundTerm("x", "a", membership.Triangular{A: 0, B: 1, C: 2})
	b := boundTerm("y", "b", membership.Triangular{A: 0, B: 1, C: 2})

	_, err := And(a, b).Evaluate(Bindings{"x": 1})
	assert.ErrorIs(t, err, ErrMissingInput)
	_, err = Not(b).Evaluate(Bindings{"x": 1})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestEvaluateUnboundTerm(t *testing.T) {
	_, err := Is("x", "a").Evaluate(Bindings{"x": 1})
	assert.ErrorIs(t, err, ErrUnboundTerm)
}

func TestExprString(t *testing.T) {
	e := And(
		Is("ambient_light", "very bright"),
		Or(Is("distance", "close"), Is("distance", "moderate")),
		Not(Is("time_of_day", "day")),
	)
	assert.Equal(t,
		`ambient_light is "very bright" AND (distance is "close" OR distance is "moderate") AND NOT time_of_day is "day"`,
		e.String())
	assert.Equal(t, `NOT (x is "a" OR x is "b")`, Not(Or(Is("x", "a"), Is("x", "b"))).String())
}

func TestInputs(t *testing.T) {
	e := And(Is("b", "t"), Or(Is("a", "t"), Not(Is("b", "u"))))
	assert.Equal(t, []string{"a", "b"}, Inputs(e))
}
