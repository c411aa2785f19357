package indicators

import (
	"context"
	"math"
	"sort"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/shared/helper"
)

// plain builds the base of a parameterless indicator.
func plain(name string) algorithm.Base {
	b, _ := algorithm.NewBase(name, nil, algorithm.RejectUnknown)
	return b
}

// reduce applies fn to the non-NaN samples of s. Without any, a degrades to NaN.
func reduce(ctx context.Context, a algorithm.Algorithm, s *series.Series, fn func([]float64) float64) (any, error) {
	xs := samples(s)
	if len(xs) == 0 {
		return algorithm.Degenerate(ctx, a, "no samples"), nil
	}
	return fn(xs), nil
}

// samples returns the non-NaN samples of s.
func samples(s *series.Series) []float64 {
	return helper.NonNaN(s.Values())
}

// reduceVector is reduce over an already computed vector.
func reduceVector(ctx context.Context, a algorithm.Algorithm, xs []float64, fn func([]float64) float64) float64 {
	xs = helper.NonNaN(xs)
	if len(xs) == 0 {
		return algorithm.Degenerate(ctx, a, "no values")
	}
	return fn(xs)
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func mean(xs []float64) float64 {
	return sum(xs) / float64(len(xs))
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Max(m, x)
	}
	return m
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdev is the population standard deviation.
func stdev(xs []float64) float64 {
	m := mean(xs)
	acc := 0.0
	for _, x := range xs {
		acc += (x - m) * (x - m)
	}
	return math.Sqrt(acc / float64(len(xs)))
}
