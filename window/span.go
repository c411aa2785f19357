package window

import (
	"time"

	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

func NewTimeSpan(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

// TimeBounded is implemented by anything covering a wall-clock interval.
type TimeBounded interface {
	TimeSpan() TimeSpan
}

// Bound pairs a window with its series so it can report a wall-clock span.
type Bound struct {
	Window
	Series *series.Series
}

func (b Bound) TimeSpan() TimeSpan {
	return b.Span(b.Series)
}
