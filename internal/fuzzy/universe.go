package fuzzy

import (
	"fmt"
	"math"
)

// gridTolerance absorbs float error when deciding whether Max lies on the grid.
const gridTolerance = 1e-9

// maxUniversePoints bounds the sample grid of a single universe.
const maxUniversePoints = 10_000_000

// Universe is the sampled domain [Min, Max] of a linguistic variable.
type Universe struct {
	Min  float64
	Max  float64
	Step float64
}

func (u Universe) Validate() error {
	for _, v := range []float64{u.Min, u.Max, u.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds and step must be finite", ErrInvalidUniverse)
		}
	}
	if u.Max <= u.Min {
		return fmt.Errorf("%w: max %g must exceed min %g", ErrInvalidUniverse, u.Max, u.Min)
	}
	if u.Step <= 0 {
		return fmt.Errorf("%w: step must be > 0, got %g", ErrInvalidUniverse, u.Step)
	}
	if n := (u.Max - u.Min) / u.Step; math.IsInf(n, 0) || n+1 > maxUniversePoints {
		return fmt.Errorf("%w: %s exceeds %d sample points", ErrInvalidUniverse, u, maxUniversePoints)
	}
	return nil
}

// Len is the number of sample points.
func (u Universe) Len() int {
	return int(math.Floor((u.Max-u.Min)/u.Step+gridTolerance)) + 1
}

// Points returns the strictly increasing sample grid Min + i*Step.
func (u Universe) Points() []float64 {
	n := u.Len()
	out := make([]float64, n)
	for i := range out {
		out[i] = u.Min + float64(i)*u.Step
	}
	return out
}

// Contains reports whether x lies in [Min, Max].
func (u Universe) Contains(x float64) bool {
	return x >= u.Min && x <= u.Max
}

func (u Universe) String() string {
	return fmt.Sprintf("[%g, %g] step %g", u.Min, u.Max, u.Step)
}
