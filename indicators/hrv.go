package indicators

import (
	"context"
	"fmt"
	"math"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/shared/helper"
	"github.com/on-the-ground/physio_ive_go/tools"
)

// DefaultHistogramStep is the bin width, in ms, of the HRV triangular indicators.
const DefaultHistogramStep = 1000.0 / 128

var (
	nnxDescs = []algorithm.Descriptor{
		algorithm.Float("threshold", 50, "Minimum absolute successive difference counted").Positive(),
	}
	triangularDescs = []algorithm.Descriptor{
		algorithm.Float("step", DefaultHistogramStep, "Histogram bin width").Positive(),
	}
)

// NNxConfig configures NNx and PNNx. Zero fields take their defaults.
type NNxConfig struct {
	Threshold float64
}

func (c NNxConfig) Map() map[string]any {
	return map[string]any{"threshold": zeroAsNil(c.Threshold)}
}

// TriangularConfig configures Triang and TINN. Zero fields take their defaults.
type TriangularConfig struct {
	Step float64
}

func (c TriangularConfig) Map() map[string]any {
	return map[string]any{"step": zeroAsNil(c.Step)}
}

func zeroAsNil(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func diffOf(ctx context.Context, s *series.Series) (*series.Series, error) {
	d, err := tools.NewDiff(tools.DiffConfig{})
	if err != nil {
		return nil, err
	}
	return algorithm.Get[*series.Series](ctx, d, s)
}

// RMSSD is the root mean square of successive differences.
type RMSSD struct{ algorithm.Base }

func NewRMSSD() *RMSSD { return &RMSSD{plain("RMSSD")} }

func (r *RMSSD) Compute(ctx context.Context, s *series.Series) (any, error) {
	diff, err := diffOf(ctx, s)
	if err != nil {
		return nil, err
	}
	return reduceVector(ctx, r, diff.Values(), func(xs []float64) float64 {
		acc := 0.0
		for _, x := range xs {
			acc += x * x
		}
		return math.Sqrt(acc / float64(len(xs)))
	}), nil
}

// SDSD is the standard deviation of successive differences.
type SDSD struct{ algorithm.Base }

func NewSDSD() *SDSD { return &SDSD{plain("SDSD")} }

func (d *SDSD) Compute(ctx context.Context, s *series.Series) (any, error) {
	diff, err := diffOf(ctx, s)
	if err != nil {
		return nil, err
	}
	return algorithm.Get[float64](ctx, NewStDev(), diff)
}

// NNx counts successive differences larger than threshold in absolute value.
type NNx struct{ algorithm.Base }

func NewNNx(cfg NNxConfig) (*NNx, error) {
	b, err := algorithm.NewBase("NNx", nnxDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &NNx{b}, nil
}

func (n *NNx) Compute(ctx context.Context, s *series.Series) (any, error) {
	diff, err := diffOf(ctx, s)
	if err != nil {
		return nil, err
	}
	threshold := n.Params().Float("threshold")
	count := 0
	for _, d := range samples(diff) {
		if math.Abs(d) > threshold {
			count++
		}
	}
	return float64(count), nil
}

// PNNx is NNx as a percentage of the successive differences.
type PNNx struct{ algorithm.Base }

func NewPNNx(cfg NNxConfig) (*PNNx, error) {
	b, err := algorithm.NewBase("PNNx", nnxDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &PNNx{b}, nil
}

func (p *PNNx) Compute(ctx context.Context, s *series.Series) (any, error) {
	diff, err := diffOf(ctx, s)
	if err != nil {
		return nil, err
	}
	total := len(samples(diff))
	if total == 0 {
		return algorithm.Degenerate(ctx, p, "no successive differences"), nil
	}
	nnx, err := NewNNx(NNxConfig{Threshold: p.Params().Float("threshold")})
	if err != nil {
		return nil, err
	}
	count, err := algorithm.Get[float64](ctx, nnx, s)
	if err != nil {
		return nil, err
	}
	return 100 * count / float64(total), nil
}

// histogramOf bins the finite samples of s in steps of step from their
// minimum. Fewer than 10 bins, or more than tools.MaxBins, degrade a to NaN.
func histogramOf(ctx context.Context, a algorithm.Algorithm, s *series.Series, step float64) (tools.Hist, bool, error) {
	xs := helper.FiniteValues(s.Values())
	if len(xs) == 0 {
		algorithm.Degenerate(ctx, a, "no finite samples")
		return tools.Hist{}, false, nil
	}
	lo, hi := minOf(xs), maxOf(xs)
	bins := (hi-lo)/step + 1
	if bins < 10 {
		algorithm.Degenerate(ctx, a, "len(bins) < 10")
		return tools.Hist{}, false, nil
	}
	if bins > tools.MaxBins {
		algorithm.Degenerate(ctx, a, fmt.Sprintf("%g bins exceed %d", bins, tools.MaxBins))
		return tools.Hist{}, false, nil
	}

	h, err := tools.NewHistogram(tools.HistogramConfig{Edges: tools.StepEdges(lo, hi, step)})
	if err != nil {
		return tools.Hist{}, false, err
	}
	hist, err := algorithm.Get[tools.Hist](ctx, h, s)
	if err != nil {
		return tools.Hist{}, false, fmt.Errorf("histogram: %w", err)
	}
	return hist, true, nil
}

// Triang is the HRV triangular index: sample count over the modal bin count.
type Triang struct{ algorithm.Base }

func NewTriang(cfg TriangularConfig) (*Triang, error) {
	b, err := algorithm.NewBase("Triang", triangularDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &Triang{b}, nil
}

func (t *Triang) Compute(ctx context.Context, s *series.Series) (any, error) {
	hist, ok, err := histogramOf(ctx, t, s, t.Params().Float("step"))
	if err != nil || !ok {
		return math.NaN(), err
	}
	modal, _ := hist.Max()
	total := 0
	for _, c := range hist.Counts {
		total += c
	}
	return float64(total) / float64(modal), nil
}

// TINN is the base width of the triangle best fitting the sample histogram
// in the least squares sense, its apex on the modal bin.
type TINN struct{ algorithm.Base }

func NewTINN(cfg TriangularConfig) (*TINN, error) {
	b, err := algorithm.NewBase("TINN", triangularDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &TINN{b}, nil
}

func (t *TINN) Compute(ctx context.Context, s *series.Series) (any, error) {
	hist, ok, err := histogramOf(ctx, t, s, t.Params().Float("step"))
	if err != nil || !ok {
		return math.NaN(), err
	}
	n, m := triangleBase(hist)
	return hist.Edges[m+1] - hist.Edges[n], nil
}

// triangleBase returns the first and last bin of the fitted triangle.
func triangleBase(h tools.Hist) (int, int) {
	modal, apex := h.Max()
	top := float64(modal)
	bins := len(h.Counts)

	left, best := 0, math.Inf(1)
	for i := 0; i <= apex; i++ {
		e := 0.0
		for j := 0; j < apex; j++ {
			y := 0.0
			if j > i {
				y = top * float64(j-i) / float64(apex-i)
			}
			e += sq(float64(h.Counts[j]) - y)
		}
		if e < best {
			left, best = i, e
		}
	}

	right, best := apex, math.Inf(1)
	for r := apex; r < bins; r++ {
		e := 0.0
		for j := apex + 1; j < bins; j++ {
			y := 0.0
			if j < r {
				y = top * float64(r-j) / float64(r-apex)
			}
			e += sq(float64(h.Counts[j]) - y)
		}
		if e < best {
			right, best = r, e
		}
	}
	return left, right
}

func sq(x float64) float64 { return x * x }
