package window

import (
	"fmt"
	"math"

	"github.com/on-the-ground/physio_ive_go/series"
)

// slack absorbs float error when the last window ends exactly on the series end.
const slack = 1e-9

// LinearTime yields windows of width time units every step time units,
// starting at the start of the series, while they fit inside it.
type LinearTime struct {
	cursor
	step, width float64
	t0, end     float64
	k           int
}

func NewLinearTime(step, width float64, s *series.Series) (*LinearTime, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil series", ErrInvalidConfiguration)
	}
	if !positive(step) || !positive(width) {
		return nil, fmt.Errorf("%w: step=%v width=%v must be positive", ErrInvalidConfiguration, step, width)
	}
	return &LinearTime{step: step, width: width, t0: s.StartTime(), end: s.EndTime()}, nil
}

func (g *LinearTime) Next() (Window, bool) {
	if g.state == Exhausted {
		return Window{}, false
	}
	start := g.t0 + float64(g.k)*g.step
	if start+g.width > g.end+slack*math.Max(1, math.Abs(g.end)) {
		return g.exhaust()
	}
	g.k++
	return g.emit(Window{Kind: ByTime, Start: start, End: start + g.width, Step: g.step, Width: g.width})
}

// LinearIndex yields windows of width samples every step samples.
type LinearIndex struct {
	cursor
	step, width, n int
	next           int
}

func NewLinearIndex(step, width int, s *series.Series) (*LinearIndex, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil series", ErrInvalidConfiguration)
	}
	if step <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: step=%d width=%d must be positive", ErrInvalidConfiguration, step, width)
	}
	return &LinearIndex{step: step, width: width, n: s.Len()}, nil
}

func (g *LinearIndex) Next() (Window, bool) {
	if g.state == Exhausted || g.next+g.width > g.n {
		return g.exhaust()
	}
	start := g.next
	g.next += g.step
	return g.emit(Window{
		Kind:  ByIndex,
		Start: float64(start),
		End:   float64(start + g.width),
		Step:  float64(g.step),
		Width: float64(g.width),
	})
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
