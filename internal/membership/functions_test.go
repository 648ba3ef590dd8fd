package membership

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangularShape(t *testing.T) {
	fn, err := NewTriangular(10, 20, 30)
	require.NoError(t, err)

	assert.Equal(t, 1.0, fn.Evaluate(20))
	assert.InDelta(t, 0.5, fn.Evaluate(15), 1e-12)
	assert.InDelta(t, 0.25, fn.Evaluate(27.5), 1e-12)
	for _, x := range []float64{-5, 0, 10, 30, 31, 1e9} {
		assert.Zero(t, fn.Evaluate(x), "x=%v", x)
	}
}

func TestTrapezoidalShape(t *testing.T) {
	fn, err := NewTrapezoidal(500, 700, 900, 900)
	require.NoError(t, err)

	for _, x := range []float64{700, 750, 899.5, 900} {
		assert.Equal(t, 1.0, fn.Evaluate(x), "x=%v", x)
	}
	assert.InDelta(t, 0.5, fn.Evaluate(600), 1e-12)
	assert.Zero(t, fn.Evaluate(500))
	assert.Zero(t, fn.Evaluate(100))
	assert.Zero(t, fn.Evaluate(901))
}

func TestCoincidentBreakpointsAreSteps(t *testing.T) {
	leftShoulder, err := NewTriangular(0, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, leftShoulder.Evaluate(0))
	assert.InDelta(t, 0.5, leftShoulder.Evaluate(5), 1e-12)

	rightShoulder, err := NewTriangular(200, 500, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rightShoulder.Evaluate(500))
	assert.InDelta(t, 280.0/300.0, rightShoulder.Evaluate(480), 1e-12)

	spike, err := NewTriangular(4, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, spike.Evaluate(4))
	assert.Zero(t, spike.Evaluate(3.999))

	rect, err := NewTrapezoidal(1, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rect.Evaluate(1))
	assert.Equal(t, 1.0, rect.Evaluate(2))
	assert.Zero(t, rect.Evaluate(0.999))
	assert.Zero(t, rect.Evaluate(2.001))
}

func TestDegreesStayInUnitInterval(t *testing.T) {
	shapes := []Func{
		Triangular{A: 0, B: 10, C: 20},
		Triangular{A: 0, B: 0, C: 10},
		Triangular{A: 3, B: 5.5, C: 7},
		Trapezoidal{A: 150, B: 175, C: 200, D: 200},
		Trapezoidal{A: 20, B: 21, C: 24, D: 24},
		Trapezoidal{A: 5, B: 5, C: 5, D: 5},
	}
	for _, fn := range shapes {
		for x := -50.0; x <= 250; x += 0.25 {
			got := fn.Evaluate(x)
			require.False(t, math.IsNaN(got), "%v at %v", fn, x)
			require.GreaterOrEqual(t, got, 0.0, "%v at %v", fn, x)
			require.LessOrEqual(t, got, 1.0, "%v at %v", fn, x)
		}
		assert.Zero(t, fn.Evaluate(math.NaN()), "%v at NaN", fn)
	}
}

func TestConstructorsRejectBadParams(t *testing.T) {
	_, err := NewTriangular(3, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = NewTriangular(0, math.NaN(), 1)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = NewTrapezoidal(0, 1, 3, 2)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = NewTrapezoidal(0, 1, 2, math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSample(t *testing.T) {
	got := Sample(Triangular{A: 0, B: 1, C: 2}, []float64{0, 0.5, 1, 1.5, 2})
	assert.Equal(t, []float64{0, 0.5, 1, 0.5, 0}, got)
}

func TestString(t *testing.T) {
	assert.Equal(t, "trimf(0, 10, 20)", Triangular{A: 0, B: 10, C: 20}.String())
	assert.Equal(t, "trapmf(20, 21, 24, 24)", Trapezoidal{A: 20, B: 21, C: 24, D: 24}.String())
	assert.Equal(t, "trimf(3, 5.5, 7)", Triangular{A: 3, B: 5.5, C: 7}.String())
}
