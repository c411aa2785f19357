// Package window cuts a series into the segments a mapper computes on.
package window

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/physio_ive_go/series"
)

var ErrInvalidConfiguration = errors.New("invalid window configuration")

// Kind tells how the bounds of a Window are expressed.
type Kind int

const (
	ByTime Kind = iota
	ByIndex
)

func (k Kind) String() string {
	if k == ByIndex {
		return "index"
	}
	return "time"
}

// Window is a half-open segment [Start, End) of a series.
type Window struct {
	Kind  Kind
	Start float64
	End   float64
	// Step and Width echo the generator that produced the window; zero otherwise.
	Step  float64
	Width float64
	Label string
}

// Slice returns the part of s covered by w.
func (w Window) Slice(s *series.Series) *series.Series {
	if w.Kind == ByIndex {
		return s.Slice(int(w.Start), int(w.End))
	}
	return s.SliceTime(w.Start, w.End)
}

// Span maps w onto wall-clock time through the epoch of s.
func (w Window) Span(s *series.Series) TimeSpan {
	from, to := w.Start, w.End
	if w.Kind == ByIndex {
		sub := w.Slice(s)
		from, to = sub.StartTime(), sub.EndTime()
	}
	return NewTimeSpan(s.At(from), s.At(to))
}

func (w Window) String() string {
	if w.Label != "" {
		return fmt.Sprintf("%s[%g, %g)#%s", w.Kind, w.Start, w.End, w.Label)
	}
	return fmt.Sprintf("%s[%g, %g)", w.Kind, w.Start, w.End)
}

// State is the lifecycle of a generator. It only moves forward.
type State int

const (
	Unstarted State = iota
	Emitting
	Exhausted
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Emitting:
		return "emitting"
	}
	return "exhausted"
}

// Generator yields windows in order. Once Next reports false it keeps doing
// so; build a new generator to start over.
type Generator interface {
	Next() (Window, bool)
	State() State
}

// cursor tracks the state shared by every generator.
type cursor struct {
	state State
}

func (c *cursor) State() State { return c.state }

func (c *cursor) emit(w Window) (Window, bool) {
	c.state = Emitting
	return w, true
}

func (c *cursor) exhaust() (Window, bool) {
	c.state = Exhausted
	return Window{}, false
}

// Drain collects the remaining windows of g.
func Drain(g Generator) []Window {
	var out []Window
	for {
		w, ok := g.Next()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}
