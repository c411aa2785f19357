package tools_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/cache"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// even samples vals once per second.
func even(t *testing.T, vals ...float64) *series.Series {
	s, err := series.New(vals, series.Config{SamplingFreq: 1, Unit: time.Second})
	require.NoError(t, err)
	return s
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	s := even(t, 1, 3, 6, 10)

	d1, err := tools.NewDiff(tools.DiffConfig{})
	require.NoError(t, err)
	out, err := algorithm.Get[*series.Series](ctx, d1, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, out.Values())
	assert.Equal(t, 1.0, out.StartTime())
	assert.True(t, out.IsEven())

	d2, err := tools.NewDiff(tools.DiffConfig{Degree: 2})
	require.NoError(t, err)
	out, err = algorithm.Get[*series.Series](ctx, d2, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, out.Values())
	assert.Equal(t, 2.0, out.StartTime())
}

func TestDiff_Timestamped(t *testing.T) {
	s, err := series.FromIntervals([]float64{800, 900, 700}, series.Config{})
	require.NoError(t, err)
	d, err := tools.NewDiff(tools.DiffConfig{})
	require.NoError(t, err)

	out, err := algorithm.Get[*series.Series](context.Background(), d, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, -200}, out.Values())
	assert.Equal(t, []float64{1700, 2400}, out.Times())
	assert.Equal(t, "IBI", out.Nature())
}

func TestDiff_ShortSeries(t *testing.T) {
	d, err := tools.NewDiff(tools.DiffConfig{Degree: 3})
	require.NoError(t, err)
	out, err := algorithm.Get[*series.Series](context.Background(), d, even(t, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestHistogram(t *testing.T) {
	ctx := context.Background()
	s := even(t, 1, 2, 2, 3, 4)

	h, err := tools.NewHistogram(tools.HistogramConfig{Bins: 3})
	require.NoError(t, err)
	hist, err := algorithm.Get[tools.Hist](ctx, h, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, hist.Edges)
	assert.Equal(t, []int{1, 2, 2}, hist.Counts)

	h, err = tools.NewHistogram(tools.HistogramConfig{Edges: []float64{0, 2, 4}})
	require.NoError(t, err)
	hist, err = algorithm.Get[tools.Hist](ctx, h, s)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, hist.Counts)

	best, at := hist.Max()
	assert.Equal(t, 4, best)
	assert.Equal(t, 1, at)
}

func TestHistogram_InvalidEdges(t *testing.T) {
	_, err := tools.NewHistogram(tools.HistogramConfig{Edges: []float64{3, 1}})
	assert.ErrorIs(t, err, algorithm.ErrInvalidParameter)
}

func TestStepEdges(t *testing.T) {
	assert.Equal(t, []float64{0, 5, 10, 15}, tools.StepEdges(0, 10, 5))
	assert.Nil(t, tools.StepEdges(0, math.Inf(1), 5))
	assert.Nil(t, tools.StepEdges(0, 10, 1e-300))
	assert.Equal(t, []float64{-0.5, 0.5}, tools.EqualWidthEdges([]float64{0, 0}, 1))
}

func TestPeakDetection(t *testing.T) {
	p, err := tools.NewPeakDetection(tools.PeakConfig{})
	require.NoError(t, err)

	peaks, err := algorithm.Get[tools.Peaks](context.Background(), p, even(t, 0, 5, 0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, []tools.Extremum{{Index: 1, Value: 5}, {Index: 3, Value: 5}}, peaks.Maxima)
	assert.Equal(t, []tools.Extremum{{Index: 2, Value: 0}}, peaks.Minima)
	assert.Equal(t, []float64{5, 5}, peaks.MaxValues())

	_, err = tools.NewPeakDetection(tools.PeakConfig{Delta: -1})
	assert.ErrorIs(t, err, algorithm.ErrInvalidParameter)
}

func TestPeakDetection_FlatSignal(t *testing.T) {
	p, err := tools.NewPeakDetection(tools.PeakConfig{Delta: 10})
	require.NoError(t, err)
	peaks, err := algorithm.Get[tools.Peaks](context.Background(), p, even(t, 0, 5, 0, 5, 0))
	require.NoError(t, err)
	assert.Empty(t, peaks.Maxima)
}

func TestPeakSelection_DurationsAndSlopes(t *testing.T) {
	ctx := context.Background()
	s := even(t, 0, 5, 0, 5, 0)
	cfg := tools.SelectionConfig{}

	sel, err := tools.NewPeakSelection(cfg)
	require.NoError(t, err)
	selection, err := algorithm.Get[tools.Selection](ctx, sel, s)
	require.NoError(t, err)
	assert.Equal(t, tools.Selection{Peaks: []int{1, 3}, Starts: []int{0, 2}, Stops: []int{2, 4}}, selection)

	algorithm.Clear(s)
	before := s.Cache().Stats()

	dur, err := tools.NewDurations(cfg)
	require.NoError(t, err)
	durations, err := algorithm.Get[[]float64](ctx, dur, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, durations)

	slo, err := tools.NewSlopes(cfg)
	require.NoError(t, err)
	slopes, err := algorithm.Get[[]float64](ctx, slo, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5}, slopes)

	// Durations, Slopes, PeakSelection and PeakDetection each computed once
	after := s.Cache().Stats()
	assert.Equal(t, 4, s.Cache().Len())
	assert.Equal(t, cache.Stats{Hits: before.Hits + 1, Misses: before.Misses + 4}, after)
}

func TestPeakSelection_IntervalSeries(t *testing.T) {
	ctx := context.Background()
	// beats at 800, 1650, 2550, 3370, 4240, 5150, 5950 and 6800 ms
	s, err := series.FromIntervals([]float64{800, 850, 900, 820, 870, 910, 800, 850}, series.Config{})
	require.NoError(t, err)

	sel, err := tools.NewPeakSelection(tools.SelectionConfig{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, sel.Params().Float("pre_max"))
	selection, err := algorithm.Get[tools.Selection](ctx, sel, s)
	require.NoError(t, err)
	assert.Equal(t, tools.Selection{Peaks: []int{2, 5}, Starts: []int{0, 3}, Stops: []int{3, 6}}, selection)

	dur, err := tools.NewDurations(tools.SelectionConfig{})
	require.NoError(t, err)
	durations, err := algorithm.Get[[]float64](ctx, dur, s)
	require.NoError(t, err)
	assert.Equal(t, []float64{2570, 2580}, durations)

	slo, err := tools.NewSlopes(tools.SelectionConfig{})
	require.NoError(t, err)
	slopes, err := algorithm.Get[[]float64](ctx, slo, s)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100.0 / 1750, 90.0 / 1780}, slopes, 1e-12)

	// one second back reaches only the previous beat
	short, err := tools.NewPeakSelection(tools.SelectionConfig{PreMax: 1})
	require.NoError(t, err)
	selection, err = algorithm.Get[tools.Selection](ctx, short, s)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, selection.Peaks)
	assert.Equal(t, []int{1, 4}, selection.Starts)

	// half a second back reaches none
	shorter, err := tools.NewPeakSelection(tools.SelectionConfig{PreMax: 0.5})
	require.NoError(t, err)
	selection, err = algorithm.Get[tools.Selection](ctx, shorter, s)
	require.NoError(t, err)
	assert.Zero(t, selection.Len())
}

func TestPeakSelection_DropsUnboundedPeaks(t *testing.T) {
	sel, err := tools.NewPeakSelection(tools.SelectionConfig{})
	require.NoError(t, err)

	// the first maximum sits on sample 0 and has no start
	selection, err := algorithm.Get[tools.Selection](context.Background(), sel, even(t, 5, 0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, selection.Peaks)
}
