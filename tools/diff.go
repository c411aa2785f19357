// Package tools holds the shared sub-computations indicators are built from.
// Every tool is an algorithm.Algorithm, so a tool invoked by several
// indicators on the same series runs once.
package tools

import (
	"context"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
)

var diffDescs = []algorithm.Descriptor{
	algorithm.Int("degree", 1, "Number of times the series is differenced").Positive(),
}

// DiffConfig configures Diff. Zero fields take their defaults.
type DiffConfig struct {
	Degree int
}

func (c DiffConfig) Map() map[string]any {
	return map[string]any{"degree": zeroAsNil(c.Degree)}
}

// Diff computes discrete differences. Each difference is placed at the time
// of the later of its two samples.
type Diff struct {
	algorithm.Base
}

func NewDiff(cfg DiffConfig) (*Diff, error) {
	return newDiff(cfg.Map())
}

func newDiff(sources ...map[string]any) (*Diff, error) {
	b, err := algorithm.NewBase("Diff", diffDescs, algorithm.RejectUnknown, sources...)
	if err != nil {
		return nil, err
	}
	return &Diff{Base: b}, nil
}

// Compute returns a *series.Series.
func (d *Diff) Compute(_ context.Context, s *series.Series) (any, error) {
	degree := d.Params().Int("degree")
	values, times, labels := s.Values(), s.Times(), s.Labels()
	for i := 0; i < degree; i++ {
		if len(values) == 0 {
			break
		}
		for i := 1; i < len(values); i++ {
			values[i-1] = values[i] - values[i-1]
		}
		values = values[:len(values)-1]
		times = times[1:]
		if labels != nil {
			labels = labels[1:]
		}
	}

	cfg := series.Config{
		Nature:   s.Nature(),
		Labels:   labels,
		Metadata: s.Metadata(),
	}
	start := s.EndTime()
	if len(times) > 0 {
		start = times[0]
	}
	cfg.StartTime = &start
	if s.IsEven() {
		cfg.SamplingFreq = s.SamplingFreq()
	} else {
		cfg.Times = times
	}
	return series.New(values, cfg)
}

// zeroAsNil maps a zero config field onto "use the default".
func zeroAsNil[T int | float64](v T) any {
	if v == 0 {
		return nil
	}
	return v
}
