package indicators

import (
	"context"
	"fmt"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
)

// Mean of the samples, ignoring NaN.
type Mean struct{ algorithm.Base }

func NewMean() *Mean { return &Mean{plain("Mean")} }

func (m *Mean) Compute(ctx context.Context, s *series.Series) (any, error) {
	return reduce(ctx, m, s, mean)
}

// Min of the samples, ignoring NaN.
type Min struct{ algorithm.Base }

func NewMin() *Min { return &Min{plain("Min")} }

func (m *Min) Compute(ctx context.Context, s *series.Series) (any, error) {
	return reduce(ctx, m, s, minOf)
}

// Max of the samples, ignoring NaN.
type Max struct{ algorithm.Base }

func NewMax() *Max { return &Max{plain("Max")} }

func (m *Max) Compute(ctx context.Context, s *series.Series) (any, error) {
	return reduce(ctx, m, s, maxOf)
}

// Range is Max - Min.
type Range struct{ algorithm.Base }

func NewRange() *Range { return &Range{plain("Range")} }

func (r *Range) Compute(ctx context.Context, s *series.Series) (any, error) {
	hi, err := algorithm.Get[float64](ctx, NewMax(), s)
	if err != nil {
		return nil, err
	}
	lo, err := algorithm.Get[float64](ctx, NewMin(), s)
	if err != nil {
		return nil, err
	}
	return hi - lo, nil
}

// Median of the samples, ignoring NaN.
type Median struct{ algorithm.Base }

func NewMedian() *Median { return &Median{plain("Median")} }

func (m *Median) Compute(ctx context.Context, s *series.Series) (any, error) {
	return reduce(ctx, m, s, median)
}

// StDev is the population standard deviation, ignoring NaN.
type StDev struct{ algorithm.Base }

func NewStDev() *StDev { return &StDev{plain("StDev")} }

func (d *StDev) Compute(ctx context.Context, s *series.Series) (any, error) {
	return reduce(ctx, d, s, stdev)
}

// Sum of the samples, NaN counting as zero.
type Sum struct{ algorithm.Base }

func NewSum() *Sum { return &Sum{plain("Sum")} }

func (m *Sum) Compute(_ context.Context, s *series.Series) (any, error) {
	return sum(samples(s)), nil
}

// AUC is the area under an evenly sampled series, NaN counting as zero.
type AUC struct{ algorithm.Base }

func NewAUC() *AUC { return &AUC{plain("AUC")} }

func (a *AUC) Compute(ctx context.Context, s *series.Series) (any, error) {
	if !s.IsEven() {
		return nil, fmt.Errorf("%w: AUC needs an evenly sampled series", algorithm.ErrTypeWrongType)
	}
	total, err := algorithm.Get[float64](ctx, NewSum(), s)
	if err != nil {
		return nil, err
	}
	return total / s.SamplingFreq(), nil
}
