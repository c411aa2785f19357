package tools

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
)

var peakDescs = []algorithm.Descriptor{
	algorithm.Float("delta", 2, "Amplitude of the minimum peak").Positive(),
}

var selectionDescs = append(append([]algorithm.Descriptor(nil), peakDescs...),
	algorithm.Float("pre_max", 2, "Seconds before the peak searched for its start").Positive(),
	algorithm.Float("post_max", 2, "Seconds after the peak searched for its stop").Positive(),
)

// PeakDescriptors declares the parameters of PeakDetection.
func PeakDescriptors() []algorithm.Descriptor {
	return append([]algorithm.Descriptor(nil), peakDescs...)
}

// SelectionDescriptors declares the parameters of PeakSelection, Durations and Slopes.
func SelectionDescriptors() []algorithm.Descriptor {
	return append([]algorithm.Descriptor(nil), selectionDescs...)
}

// PeakConfig configures PeakDetection. Zero fields take their defaults.
type PeakConfig struct {
	Delta float64
}

// Map returns the parameter mapping, leaving zero fields unset.
func (c PeakConfig) Map() map[string]any {
	return map[string]any{"delta": zeroAsNil(c.Delta)}
}

// SelectionConfig configures PeakSelection, Durations and Slopes.
// PreMax and PostMax are in seconds.
type SelectionConfig struct {
	Delta   float64
	PreMax  float64
	PostMax float64
}

func (c SelectionConfig) Map() map[string]any {
	return map[string]any{
		"delta":    zeroAsNil(c.Delta),
		"pre_max":  zeroAsNil(c.PreMax),
		"post_max": zeroAsNil(c.PostMax),
	}
}

// Extremum is one detected local maximum or minimum.
type Extremum struct {
	Index int
	Value float64
}

type Peaks struct {
	Maxima []Extremum
	Minima []Extremum
}

// MaxValues returns the values of the maxima.
func (p Peaks) MaxValues() []float64 {
	out := make([]float64, len(p.Maxima))
	for i, m := range p.Maxima {
		out[i] = m.Value
	}
	return out
}

// PeakDetection finds local extrema that stand out from their surroundings by
// more than delta.
type PeakDetection struct {
	algorithm.Base
}

func NewPeakDetection(cfg PeakConfig) (*PeakDetection, error) {
	return newPeakDetection(cfg.Map())
}

func newPeakDetection(sources ...map[string]any) (*PeakDetection, error) {
	b, err := algorithm.NewBase("PeakDetection", peakDescs, algorithm.RejectUnknown, sources...)
	if err != nil {
		return nil, err
	}
	return &PeakDetection{Base: b}, nil
}

// Compute returns Peaks. NaN samples never become extrema.
func (p *PeakDetection) Compute(_ context.Context, s *series.Series) (any, error) {
	delta := p.Params().Float("delta")
	var out Peaks

	mn, mx := math.Inf(1), math.Inf(-1)
	mnAt, mxAt := -1, -1
	lookForMax := true
	for i, n := 0, s.Len(); i < n; i++ {
		v := s.Value(i)
		if math.IsNaN(v) {
			continue
		}
		if v > mx {
			mx, mxAt = v, i
		}
		if v < mn {
			mn, mnAt = v, i
		}
		if lookForMax {
			if v < mx-delta {
				out.Maxima = append(out.Maxima, Extremum{Index: mxAt, Value: mx})
				mn, mnAt = v, i
				lookForMax = false
			}
			continue
		}
		if v > mn+delta {
			out.Minima = append(out.Minima, Extremum{Index: mnAt, Value: mn})
			mx, mxAt = v, i
			lookForMax = true
		}
	}
	return out, nil
}

// Selection holds, for every selected maximum, the index of its start and
// stop. The three slices are aligned.
type Selection struct {
	Peaks  []int
	Starts []int
	Stops  []int
}

func (s Selection) Len() int { return len(s.Peaks) }

// PeakSelection delimits every detected maximum: its start is the lowest
// sample in [t-pre_max, t), its stop the lowest in (t, t+post_max]. The spans
// are converted into series time through the unit of the series.
// Maxima with nothing on either side are dropped.
type PeakSelection struct {
	algorithm.Base
}

func NewPeakSelection(cfg SelectionConfig) (*PeakSelection, error) {
	return newPeakSelection(cfg.Map())
}

func newPeakSelection(sources ...map[string]any) (*PeakSelection, error) {
	b, err := algorithm.NewBase("PeakSelection", selectionDescs, algorithm.RejectUnknown, sources...)
	if err != nil {
		return nil, err
	}
	return &PeakSelection{Base: b}, nil
}

// Compute returns a Selection.
func (p *PeakSelection) Compute(ctx context.Context, s *series.Series) (any, error) {
	detection, err := newPeakDetection(map[string]any{"delta": p.Params().Float("delta")})
	if err != nil {
		return nil, err
	}
	peaks, err := algorithm.Get[Peaks](ctx, detection, s)
	if err != nil {
		return nil, fmt.Errorf("peak detection: %w", err)
	}

	pre, post := s.Units(p.Params().Float("pre_max")), s.Units(p.Params().Float("post_max"))
	times := s.Times()
	var out Selection
	for _, m := range peaks.Maxima {
		t := times[m.Index]
		lo := sort.SearchFloat64s(times, t-pre)
		start := argMin(s, lo, m.Index)
		// first sample after t+post
		hi := sort.Search(len(times), func(i int) bool { return times[i] > t+post })
		stop := argMin(s, m.Index+1, hi)
		if start < 0 || stop < 0 {
			continue
		}
		out.Peaks = append(out.Peaks, m.Index)
		out.Starts = append(out.Starts, start)
		out.Stops = append(out.Stops, stop)
	}
	return out, nil
}

// argMin returns the index of the lowest non-NaN sample in [from, to), or -1.
func argMin(s *series.Series, from, to int) int {
	at := -1
	for i := from; i < to; i++ {
		v := s.Value(i)
		if math.IsNaN(v) {
			continue
		}
		if at < 0 || v < s.Value(at) {
			at = i
		}
	}
	return at
}

// Durations measures every selected peak from start to stop, in time units.
type Durations struct {
	algorithm.Base
}

func NewDurations(cfg SelectionConfig) (*Durations, error) {
	b, err := algorithm.NewBase("Durations", selectionDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &Durations{Base: b}, nil
}

// Compute returns a []float64 aligned with the selection.
func (d *Durations) Compute(ctx context.Context, s *series.Series) (any, error) {
	sel, err := selectionFor(ctx, d.Params(), s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, sel.Len())
	for i := range out {
		out[i] = s.Time(sel.Stops[i]) - s.Time(sel.Starts[i])
	}
	return out, nil
}

// Slopes measures the rise of every selected peak from its start.
type Slopes struct {
	algorithm.Base
}

func NewSlopes(cfg SelectionConfig) (*Slopes, error) {
	b, err := algorithm.NewBase("Slopes", selectionDescs, algorithm.RejectUnknown, cfg.Map())
	if err != nil {
		return nil, err
	}
	return &Slopes{Base: b}, nil
}

// Compute returns a []float64 aligned with the selection. A start sharing the
// time of its peak yields NaN.
func (sl *Slopes) Compute(ctx context.Context, s *series.Series) (any, error) {
	sel, err := selectionFor(ctx, sl.Params(), s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, sel.Len())
	for i := range out {
		peak, start := sel.Peaks[i], sel.Starts[i]
		dt := s.Time(peak) - s.Time(start)
		if dt == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (s.Value(peak) - s.Value(start)) / dt
	}
	return out, nil
}

func selectionFor(ctx context.Context, p algorithm.Params, s *series.Series) (Selection, error) {
	selection, err := newPeakSelection(map[string]any{
		"delta":    p.Float("delta"),
		"pre_max":  p.Float("pre_max"),
		"post_max": p.Float("post_max"),
	})
	if err != nil {
		return Selection{}, err
	}
	sel, err := algorithm.Get[Selection](ctx, selection, s)
	if err != nil {
		return Selection{}, fmt.Errorf("peak selection: %w", err)
	}
	return sel, nil
}
