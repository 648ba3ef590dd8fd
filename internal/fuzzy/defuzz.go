package fuzzy

import (
	"gonum.org/v1/gonum/floats"
)

// Defuzzifier names a Mamdani defuzzification method.
type Defuzzifier string

const (
	Centroid          Defuzzifier = "centroid"
	Bisector          Defuzzifier = "bisector"
	MeanOfMaximum     Defuzzifier = "mom"
	SmallestOfMaximum Defuzzifier = "som"
	LargestOfMaximum  Defuzzifier = "lom"
)

func (d Defuzzifier) valid() bool {
	switch d {
	case Centroid, Bisector, MeanOfMaximum, SmallestOfMaximum, LargestOfMaximum:
		return true
	}
	return false
}

func (d Defuzzifier) apply(xs, mu []float64) (float64, error) {
	total := floats.Sum(mu)
	if total <= 0 {
		return 0, ErrEmptyAggregate
	}
	switch d {
	case Bisector:
		return bisector(xs, mu, total), nil
	case MeanOfMaximum, SmallestOfMaximum, LargestOfMaximum:
		return maximumBased(d, xs, mu), nil
	default:
		return floats.Dot(xs, mu) / total, nil
	}
}

// bisector returns the first grid point at which the cumulative mass reaches half.
func bisector(xs, mu []float64, total float64) float64 {
	half := total / 2
	cum := 0.0
	for i, m := range mu {
		cum += m
		if cum >= half {
			return xs[i]
		}
	}
	return xs[len(xs)-1]
}

func maximumBased(d Defuzzifier, xs, mu []float64) float64 {
	peak := floats.Max(mu)
	var sum float64
	var n int
	lo, hi := 0.0, 0.0
	for i, m := range mu {
		if m != peak {
			continue
		}
		if n == 0 {
			lo = xs[i]
		}
		hi = xs[i]
		sum += xs[i]
		n++
	}
	switch d {
	case SmallestOfMaximum:
		return lo
	case LargestOfMaximum:
		return hi
	default:
		return sum / float64(n)
	}
}
