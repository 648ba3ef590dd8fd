package membership

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrInvalidParams = errors.New("invalid membership parameters")

// Func maps a crisp value to a membership degree in [0, 1].
type Func interface {
	Evaluate(x float64) float64
}

// Triangular rises from A to a single peak at B and falls back to zero at C.
type Triangular struct {
	A, B, C float64
}

func NewTriangular(a, b, c float64) (Triangular, error) {
	if err := checkOrdered(a, b, c); err != nil {
		return Triangular{}, err
	}
	return Triangular{A: a, B: b, C: c}, nil
}

func (t Triangular) Evaluate(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x == t.B {
		return 1
	}
	if x <= t.A || x >= t.C {
		return 0
	}
	if x < t.B {
		return (x - t.A) / (t.B - t.A)
	}
	return (t.C - x) / (t.C - t.B)
}

func (t Triangular) String() string {
	return "trimf(" + formatParams(t.A, t.B, t.C) + ")"
}

// Trapezoidal ramps up on [A, B], holds 1 on [B, C] and ramps down on [C, D].
type Trapezoidal struct {
	A, B, C, D float64
}

func NewTrapezoidal(a, b, c, d float64) (Trapezoidal, error) {
	if err := checkOrdered(a, b, c, d); err != nil {
		return Trapezoidal{}, err
	}
	return Trapezoidal{A: a, B: b, C: c, D: d}, nil
}

func (t Trapezoidal) Evaluate(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x >= t.B && x <= t.C {
		return 1
	}
	if x <= t.A || x >= t.D {
		return 0
	}
	if x < t.B {
		return (x - t.A) / (t.B - t.A)
	}
	return (t.D - x) / (t.D - t.C)
}

func (t Trapezoidal) String() string {
	return "trapmf(" + formatParams(t.A, t.B, t.C, t.D) + ")"
}

// Sample evaluates fn at every point of xs.
func Sample(fn Func, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = fn.Evaluate(x)
	}
	return out
}

func checkOrdered(params ...float64) error {
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: parameter %d is not finite", ErrInvalidParams, i)
		}
		if i > 0 && p < params[i-1] {
			return fmt.Errorf("%w: parameters must be non-decreasing, got %s", ErrInvalidParams, formatParams(params...))
		}
	}
	return nil
}

func formatParams(params ...float64) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += strconv.FormatFloat(p, 'g', -1, 64)
	}
	return out
}
