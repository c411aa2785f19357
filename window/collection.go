package window

import (
	"fmt"

	"github.com/on-the-ground/physio_ive_go/series"
)

// Collection replays an explicit list of windows.
type Collection struct {
	cursor
	windows []Window
	next    int
}

// NewCollection requires windows ordered by start, each with End >= Start.
func NewCollection(windows []Window) (*Collection, error) {
	for i, w := range windows {
		if w.End < w.Start {
			return nil, fmt.Errorf("%w: window %d ends before it starts", ErrInvalidConfiguration, i)
		}
		if i > 0 && w.Start < windows[i-1].Start {
			return nil, fmt.Errorf("%w: window %d is out of order", ErrInvalidConfiguration, i)
		}
	}
	return &Collection{windows: append([]Window(nil), windows...)}, nil
}

func (g *Collection) Next() (Window, bool) {
	if g.state == Exhausted || g.next >= len(g.windows) {
		return g.exhaust()
	}
	w := g.windows[g.next]
	g.next++
	return g.emit(w)
}

// Labeled yields one index window per run of equal consecutive labels,
// carrying the label of the run.
type Labeled struct {
	cursor
	labels []string
	next   int
}

func NewLabeled(s *series.Series) (*Labeled, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil series", ErrInvalidConfiguration)
	}
	labels := s.Labels()
	if labels == nil {
		return nil, fmt.Errorf("%w: series has no labels", ErrInvalidConfiguration)
	}
	return &Labeled{labels: labels}, nil
}

func (g *Labeled) Next() (Window, bool) {
	if g.state == Exhausted || g.next >= len(g.labels) {
		return g.exhaust()
	}
	start := g.next
	label := g.labels[start]
	end := start + 1
	for end < len(g.labels) && g.labels[end] == label {
		end++
	}
	g.next = end
	return g.emit(Window{Kind: ByIndex, Start: float64(start), End: float64(end), Label: label})
}
