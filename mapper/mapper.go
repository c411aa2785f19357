// Package mapper applies a batch of indicators to every window of a series.
package mapper

import (
	"context"
	"fmt"
	"math"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/window"
)

// Table is the outcome of a mapping pass: one row per window in generation
// order, one column per indicator in configuration order.
type Table struct {
	Labels  []string
	Windows []window.Window
	Rows    [][]any
}

type Mapper struct {
	series     *series.Series
	generator  window.Generator
	indicators []algorithm.Indicator
	labels     []string

	windows []window.Window
	rows    [][]any
}

func New(s *series.Series, gen window.Generator, inds []algorithm.Indicator) (*Mapper, error) {
	if s == nil || gen == nil {
		return nil, fmt.Errorf("%w: mapper needs a series and a generator", window.ErrInvalidConfiguration)
	}
	for i, ind := range inds {
		if ind == nil {
			return nil, fmt.Errorf("%w: indicator %d is nil", window.ErrInvalidConfiguration, i)
		}
	}
	inds = append([]algorithm.Indicator(nil), inds...)
	return &Mapper{
		series:     s,
		generator:  gen,
		indicators: inds,
		labels:     Labels(inds),
	}, nil
}

// ComputeAll drains the generator, computing every indicator on every window.
// A failing or panicking cell becomes NaN and is logged; the pass goes on.
// The only error returned is the context's, checked between windows.
// Rows accumulate across calls, and a drained generator adds none.
func (m *Mapper) ComputeAll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, ok := m.generator.Next()
		if !ok {
			break
		}
		m.windows = append(m.windows, w)
		m.rows = append(m.rows, m.computeRow(ctx, w))
	}

	log.Log(ctx, log.LogInfo, "windows mapped", map[string]interface{}{
		"series":     m.series.ID().String(),
		"windows":    len(m.rows),
		"indicators": len(m.indicators),
	})
	return nil
}

func (m *Mapper) computeRow(ctx context.Context, w window.Window) []any {
	row := make([]any, len(m.indicators))
	sub := w.Slice(m.series)
	if sub.Len() == 0 {
		log.Log(ctx, log.LogDebug, "empty window", map[string]interface{}{
			"window": w.String(),
		})
		for i := range row {
			row[i] = math.NaN()
		}
		return row
	}
	for i, ind := range m.indicators {
		row[i] = m.cell(ctx, ind, sub, w)
	}
	return row
}

func (m *Mapper) cell(ctx context.Context, ind algorithm.Indicator, sub *series.Series, w window.Window) (v any) {
	defer func() {
		if r := recover(); r != nil {
			m.logFailure(ctx, ind, w, fmt.Errorf("panic: %v", r))
			v = math.NaN()
		}
	}()

	res, err := algorithm.Invoke(ctx, ind, sub)
	if err != nil {
		m.logFailure(ctx, ind, w, err)
		return math.NaN()
	}
	return res
}

func (m *Mapper) logFailure(ctx context.Context, ind algorithm.Indicator, w window.Window, err error) {
	log.Log(ctx, log.LogError, "indicator failed on window", map[string]interface{}{
		"indicator": ind.Name(),
		"params":    ind.Params().String(),
		"window":    w.String(),
		"error":     err,
	})
}

// Results returns the rows computed so far.
func (m *Mapper) Results() [][]any {
	out := make([][]any, len(m.rows))
	for i, row := range m.rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}

// Labels returns one column label per configured indicator.
func (m *Mapper) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Windows returns the windows computed so far, aligned with Results.
func (m *Mapper) Windows() []window.Window {
	return append([]window.Window(nil), m.windows...)
}

func (m *Mapper) Table() Table {
	return Table{Labels: m.Labels(), Windows: m.Windows(), Rows: m.Results()}
}
