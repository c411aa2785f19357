package series

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// snap absorbs float error when converting a time offset into a sample index.
const snap = 1e-9

// Slice returns samples [i, j), clamped to the bounds of s.
func (s *Series) Slice(i, j int) *Series {
	i, j = clamp(i, j, len(s.values))
	sub := s.derive(i, j)

	if s.times == nil {
		sub.start = s.start + float64(i)/s.fsamp
		sub.end = s.start + float64(j)/s.fsamp
		return sub
	}

	switch {
	case i < j:
		sub.start = s.times[i]
		sub.end = s.times[j-1]
	case i < len(s.times):
		sub.start, sub.end = s.times[i], s.times[i]
	default:
		sub.start, sub.end = s.end, s.end
	}
	return sub
}

// SliceTime returns the samples whose time t satisfies t0 <= t < t1.
func (s *Series) SliceTime(t0, t1 float64) *Series {
	if s.times == nil {
		i := int(math.Ceil((t0-s.start)*s.fsamp - snap))
		j := int(math.Ceil((t1-s.start)*s.fsamp - snap))
		return s.Slice(i, j)
	}

	i := sort.SearchFloat64s(s.times, t0)
	j := sort.SearchFloat64s(s.times, t1)
	if j < i {
		j = i
	}
	sub := s.derive(i, j)
	sub.start, sub.end = t0, t1
	return sub
}

func (s *Series) derive(i, j int) *Series {
	sub := &Series{
		id:       uuid.New(),
		values:   s.values[i:j:j],
		fsamp:    s.fsamp,
		nature:   s.nature,
		metadata: s.metadata,
		epoch:    s.epoch,
		unit:     s.unit,
	}
	if s.times != nil {
		sub.times = s.times[i:j:j]
	}
	if s.labels != nil {
		sub.labels = s.labels[i:j:j]
	}
	return sub
}

func clamp(i, j, n int) (int, int) {
	i = max(0, min(i, n))
	j = max(i, min(j, n))
	return i, j
}
