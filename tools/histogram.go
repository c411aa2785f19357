package tools

import (
	"context"
	"math"
	"sort"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/shared/helper"
)

// MaxBins bounds the number of bins StepEdges builds.
const MaxBins = 1 << 20

var histogramDescs = []algorithm.Descriptor{
	algorithm.Floats("edges", nil, "Explicit bin edges; overrides bins").Increasing(),
	algorithm.Int("bins", 10, "Number of equal-width bins over the value range").Positive(),
}

// HistogramConfig configures Histogram. Zero fields take their defaults.
type HistogramConfig struct {
	Edges []float64
	Bins  int
}

func (c HistogramConfig) Map() map[string]any {
	m := map[string]any{"bins": zeroAsNil(c.Bins)}
	if c.Edges != nil {
		m["edges"] = c.Edges
	}
	return m
}

// Hist holds len(Edges)-1 counts. Every bin is half-open except the last,
// which includes its right edge.
type Hist struct {
	Counts []int
	Edges  []float64
}

// Max returns the largest count and its bin, or (0, -1) when there are no bins.
func (h Hist) Max() (int, int) {
	best, at := 0, -1
	for i, c := range h.Counts {
		if at < 0 || c > best {
			best, at = c, i
		}
	}
	return best, at
}

type Histogram struct {
	algorithm.Base
}

func NewHistogram(cfg HistogramConfig) (*Histogram, error) {
	return newHistogram(cfg.Map())
}

func newHistogram(sources ...map[string]any) (*Histogram, error) {
	b, err := algorithm.NewBase("Histogram", histogramDescs, algorithm.RejectUnknown, sources...)
	if err != nil {
		return nil, err
	}
	return &Histogram{Base: b}, nil
}

// Compute returns a Hist. NaN and infinite samples are ignored.
func (h *Histogram) Compute(_ context.Context, s *series.Series) (any, error) {
	values := helper.FiniteValues(s.Values())
	edges := h.Params().Floats("edges")
	if edges == nil {
		edges = EqualWidthEdges(values, h.Params().Int("bins"))
	}
	return HistogramOf(values, edges), nil
}

// EqualWidthEdges spans the value range with bins equal-width bins.
// An empty input spans [0, 1]; a constant input spans [v-0.5, v+0.5].
func EqualWidthEdges(values []float64, bins int) []float64 {
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = minMax(values)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	return edges
}

// StepEdges builds edges from lo in steps of step until hi is covered.
// It returns nil when the bounds are not finite or more than MaxBins bins
// would be needed.
func StepEdges(lo, hi, step float64) []float64 {
	bins := math.Floor((hi-lo)/step) + 1
	if !(bins >= 1 && bins <= MaxBins) {
		return nil
	}
	n := int(bins)
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	return edges
}

// HistogramOf counts values into the bins delimited by edges.
// Values outside [edges[0], edges[last]] are not counted.
func HistogramOf(values, edges []float64) Hist {
	if len(edges) < 2 {
		return Hist{Counts: []int{}, Edges: edges}
	}
	counts := make([]int, len(edges)-1)
	last := edges[len(edges)-1]
	for _, v := range values {
		if v < edges[0] || v > last {
			continue
		}
		if v == last {
			counts[len(counts)-1]++
			continue
		}
		// first edge strictly greater than v closes its bin
		i := sort.Search(len(edges), func(i int) bool { return edges[i] > v })
		counts[i-1]++
	}
	return Hist{Counts: counts, Edges: edges}
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
