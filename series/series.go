// Package series holds the one-dimensional physiological signals indicators
// are computed on.
//
// A Series is immutable once built. It is either evenly sampled (a sampling
// frequency) or timestamped (one time per sample). Each Series has its own
// identity and owns the memo cache of everything computed on it; slicing
// always yields a new identity with an empty cache.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/physio_ive_go/cache"
	"go.uber.org/multierr"
)

var ErrInvalidSeries = errors.New("invalid series")

// Config describes how sample values map onto time.
type Config struct {
	// SamplingFreq in samples per time unit. Mutually exclusive with Times.
	SamplingFreq float64
	// Times holds one non-decreasing time per value.
	Times []float64
	// StartTime overrides the default start (0 for even series, Times[0] otherwise).
	StartTime *float64
	Nature    string
	// Labels holds nil or one label per value.
	Labels   []string
	Metadata map[string]any
	// Epoch and Unit map series time onto wall-clock time.
	Epoch time.Time
	Unit  time.Duration
}

// Series is an ordered sequence of samples.
type Series struct {
	id       uuid.UUID
	values   []float64
	fsamp    float64
	times    []float64
	start    float64
	end      float64
	nature   string
	labels   []string
	metadata map[string]any
	epoch    time.Time
	unit     time.Duration

	cache *cache.Cache
}

// New validates cfg against values and builds a Series.
func New(values []float64, cfg Config) (*Series, error) {
	if err := validate(values, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeries, err)
	}

	s := &Series{
		id:       uuid.New(),
		values:   append([]float64(nil), values...),
		fsamp:    cfg.SamplingFreq,
		nature:   cfg.Nature,
		metadata: cfg.Metadata,
		epoch:    cfg.Epoch,
		unit:     cfg.Unit,
	}
	if cfg.Labels != nil {
		s.labels = append([]string(nil), cfg.Labels...)
	}
	if s.unit <= 0 {
		s.unit = time.Millisecond
	}

	if cfg.Times == nil {
		if cfg.StartTime != nil {
			s.start = *cfg.StartTime
		}
		s.end = s.start + float64(len(values))/s.fsamp
		return s, nil
	}

	s.times = make([]float64, len(cfg.Times))
	copy(s.times, cfg.Times)
	switch {
	case cfg.StartTime != nil:
		s.start = *cfg.StartTime
	case len(s.times) > 0:
		s.start = s.times[0]
	}
	s.end = s.start
	if n := len(s.times); n > 0 {
		s.end = s.times[n-1]
	}
	return s, nil
}

// FromIntervals builds a timestamped series out of inter-beat intervals.
// Each sample is placed at the cumulative sum of the intervals up to and
// including itself, counted from the start time (default 0).
func FromIntervals(ibi []float64, cfg Config) (*Series, error) {
	start := 0.0
	if cfg.StartTime != nil {
		start = *cfg.StartTime
	}
	times := make([]float64, len(ibi))
	acc := start
	for i, v := range ibi {
		acc += v
		times[i] = acc
	}
	cfg.Times = times
	cfg.StartTime = &start
	if cfg.Nature == "" {
		cfg.Nature = "IBI"
	}
	return New(ibi, cfg)
}

func validate(values []float64, cfg Config) error {
	var errs error
	even := cfg.SamplingFreq != 0
	switch {
	case even && cfg.Times != nil:
		errs = multierr.Append(errs, errors.New("sampling frequency and times are mutually exclusive"))
	case !even && cfg.Times == nil:
		errs = multierr.Append(errs, errors.New("either sampling frequency or times is required"))
	}
	if even && (cfg.SamplingFreq < 0 || math.IsNaN(cfg.SamplingFreq) || math.IsInf(cfg.SamplingFreq, 0)) {
		errs = multierr.Append(errs, fmt.Errorf("sampling frequency %v must be positive and finite", cfg.SamplingFreq))
	}
	if cfg.Times != nil {
		if len(cfg.Times) != len(values) {
			errs = multierr.Append(errs, fmt.Errorf("got %d times for %d values", len(cfg.Times), len(values)))
		}
		if !sort.Float64sAreSorted(cfg.Times) {
			errs = multierr.Append(errs, errors.New("times must be non-decreasing"))
		}
		if cfg.StartTime != nil && len(cfg.Times) > 0 && *cfg.StartTime > cfg.Times[0] {
			errs = multierr.Append(errs, fmt.Errorf("start time %v is after the first sample", *cfg.StartTime))
		}
	}
	if cfg.Labels != nil && len(cfg.Labels) != len(values) {
		errs = multierr.Append(errs, fmt.Errorf("got %d labels for %d values", len(cfg.Labels), len(values)))
	}
	return errs
}

// ID identifies this series (and therefore its cache).
func (s *Series) ID() uuid.UUID { return s.id }

func (s *Series) Len() int { return len(s.values) }

// Values returns a copy of the samples.
func (s *Series) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Value returns sample i.
func (s *Series) Value(i int) float64 { return s.values[i] }

// Times returns the time of every sample.
func (s *Series) Times() []float64 {
	ts := make([]float64, len(s.values))
	if s.times != nil {
		copy(ts, s.times)
		return ts
	}
	for i := range ts {
		ts[i] = s.start + float64(i)/s.fsamp
	}
	return ts
}

// Time returns the time of sample i.
func (s *Series) Time(i int) float64 {
	if s.times != nil {
		return s.times[i]
	}
	return s.start + float64(i)/s.fsamp
}

func (s *Series) Indices() []int {
	idx := make([]int, len(s.values))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (s *Series) Duration() float64 { return s.end - s.start }

// SamplingFreq is zero for timestamped series.
func (s *Series) SamplingFreq() float64 { return s.fsamp }

func (s *Series) IsEven() bool { return s.times == nil }

func (s *Series) StartTime() float64 { return s.start }

func (s *Series) EndTime() float64 { return s.end }

func (s *Series) Nature() string { return s.nature }

// Labels returns nil when the series is unlabelled.
func (s *Series) Labels() []string {
	if s.labels == nil {
		return nil
	}
	return append([]string(nil), s.labels...)
}

func (s *Series) Metadata() map[string]any { return s.metadata }

// Unit is the wall-clock length of one series time unit.
func (s *Series) Unit() time.Duration { return s.unit }

// Units converts a duration in seconds into series time units.
func (s *Series) Units(seconds float64) float64 {
	return seconds * float64(time.Second) / float64(s.unit)
}

// At maps series time t onto wall-clock time.
func (s *Series) At(t float64) time.Time {
	return s.epoch.Add(time.Duration(t * float64(s.unit)))
}

// Cache returns the memo store of this series, creating it on first use.
func (s *Series) Cache() *cache.Cache {
	if s.cache == nil {
		s.cache = cache.New()
	}
	return s.cache
}

func (s *Series) HasCache() bool { return s.cache != nil }

// ClearCache drops every memoized result of this series.
func (s *Series) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *Series) String() string {
	kind := "even"
	if !s.IsEven() {
		kind = "timestamped"
	}
	return fmt.Sprintf("Series(%s, %s, n=%d, [%g, %g))", s.nature, kind, len(s.values), s.start, s.end)
}
