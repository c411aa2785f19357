package mapper_test

import (
	"context"
	"math"
	"testing"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/indicators"
	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/on-the-ground/physio_ive_go/mapper"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(t *testing.T, n int) *series.Series {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i % 7)
	}
	s, err := series.New(vals, series.Config{SamplingFreq: 1})
	require.NoError(t, err)
	return s
}

// shared stands for an expensive sub-computation several indicators need.
type shared struct {
	algorithm.Base
	calls *int
}

func (a *shared) Compute(_ context.Context, s *series.Series) (any, error) {
	*a.calls++
	return float64(s.Len()), nil
}

type dependent struct {
	algorithm.Base
	calls *int
}

func newDependent(t *testing.T, name string, calls *int) *dependent {
	b, err := algorithm.NewBase(name, nil, algorithm.RejectUnknown)
	require.NoError(t, err)
	return &dependent{Base: b, calls: calls}
}

func (a *dependent) Compute(ctx context.Context, s *series.Series) (any, error) {
	b, err := algorithm.NewBase("Shared", nil, algorithm.RejectUnknown)
	if err != nil {
		return nil, err
	}
	return algorithm.Get[float64](ctx, &shared{Base: b, calls: a.calls}, s)
}

type panicking struct{ algorithm.Base }

func (p *panicking) Compute(context.Context, *series.Series) (any, error) {
	panic("index out of range")
}

func TestComputeAll_Shape(t *testing.T) {
	s := ramp(t, 60000)
	gen, err := window.NewLinearTime(20000, 20000, s)
	require.NoError(t, err)
	m, err := mapper.New(s, gen, []algorithm.Indicator{indicators.NewMean(), indicators.NewRMSSD()})
	require.NoError(t, err)

	require.NoError(t, m.ComputeAll(context.Background()))

	table := m.Table()
	assert.Equal(t, []string{"Mean", "RMSSD"}, table.Labels)
	require.Len(t, table.Rows, 3)
	require.Len(t, table.Windows, 3)
	for _, row := range table.Rows {
		assert.Len(t, row, 2)
		assert.False(t, math.IsNaN(row[0].(float64)))
	}
	assert.Equal(t, 40000.0, table.Windows[2].Start)
}

func TestComputeAll_SharesSubComputationPerWindow(t *testing.T) {
	s := ramp(t, 60000)
	gen, err := window.NewLinearTime(20000, 20000, s)
	require.NoError(t, err)
	calls := 0
	m, err := mapper.New(s, gen, []algorithm.Indicator{
		newDependent(t, "A", &calls),
		newDependent(t, "B", &calls),
	})
	require.NoError(t, err)

	require.NoError(t, m.ComputeAll(context.Background()))
	assert.Equal(t, 3, calls)
	for _, row := range m.Results() {
		assert.Equal(t, []any{20000.0, 20000.0}, row)
	}
}

func TestComputeAll_DegenerateWindows(t *testing.T) {
	ctx, teardown, logs := log.WithTestLogger(context.Background())
	defer teardown()

	s := ramp(t, 100)
	gen, err := window.NewCollection([]window.Window{
		{Start: 0, End: 50},
		{Start: 500, End: 600}, // past the end
		{Start: 0, End: 3},
	})
	require.NoError(t, err)
	tinn, err := indicators.NewTINN(indicators.TriangularConfig{})
	require.NoError(t, err)
	m, err := mapper.New(s, gen, []algorithm.Indicator{indicators.NewMean(), tinn})
	require.NoError(t, err)

	require.NoError(t, m.ComputeAll(ctx))

	rows := m.Results()
	require.Len(t, rows, 3)
	assert.False(t, math.IsNaN(rows[0][0].(float64)))
	assert.True(t, math.IsNaN(rows[1][0].(float64)))
	assert.True(t, math.IsNaN(rows[1][1].(float64)))
	assert.True(t, math.IsNaN(rows[2][1].(float64)))
	assert.Equal(t, 1, logs.FilterMessage("empty window").Len())
}

func TestComputeAll_IsolatesFailingCells(t *testing.T) {
	ctx, teardown, logs := log.WithTestLogger(context.Background())
	defer teardown()

	ibi, err := series.FromIntervals([]float64{800, 850, 900, 820, 870, 910}, series.Config{})
	require.NoError(t, err)
	gen, err := window.NewLinearTime(2000, 2000, ibi)
	require.NoError(t, err)
	b, err := algorithm.NewBase("Panicking", nil, algorithm.RejectUnknown)
	require.NoError(t, err)

	m, err := mapper.New(ibi, gen, []algorithm.Indicator{
		&panicking{b},
		indicators.NewAUC(), // needs an even series
		indicators.NewMean(),
	})
	require.NoError(t, err)
	require.NoError(t, m.ComputeAll(ctx))

	rows := m.Results()
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.True(t, math.IsNaN(row[0].(float64)))
		assert.True(t, math.IsNaN(row[1].(float64)))
		assert.False(t, math.IsNaN(row[2].(float64)))
	}

	failures := logs.FilterMessage("indicator failed on window")
	assert.Equal(t, 2*len(rows), failures.Len())
	entry := failures.All()[0]
	assert.Equal(t, "Panicking", entry.ContextMap()["indicator"])
	assert.Contains(t, entry.ContextMap()["error"], "index out of range")
	assert.Equal(t, "time[0, 2000)", entry.ContextMap()["window"])
}

func TestComputeAll_Cancelled(t *testing.T) {
	s := ramp(t, 100)
	gen, err := window.NewLinearIndex(10, 10, s)
	require.NoError(t, err)
	m, err := mapper.New(s, gen, indicators.TimeDomain())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.ComputeAll(ctx), context.Canceled)
	assert.Empty(t, m.Results())
	assert.Equal(t, window.Unstarted, gen.State())
}

func TestComputeAll_ExhaustedGeneratorAddsNothing(t *testing.T) {
	s := ramp(t, 100)
	gen, err := window.NewLinearIndex(50, 50, s)
	require.NoError(t, err)
	m, err := mapper.New(s, gen, []algorithm.Indicator{indicators.NewMax()})
	require.NoError(t, err)

	require.NoError(t, m.ComputeAll(context.Background()))
	require.NoError(t, m.ComputeAll(context.Background()))
	assert.Len(t, m.Results(), 2)
}

func TestNew_Invalid(t *testing.T) {
	s := ramp(t, 10)
	gen, err := window.NewLinearIndex(5, 5, s)
	require.NoError(t, err)

	_, err = mapper.New(nil, gen, nil)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)
	_, err = mapper.New(s, nil, nil)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)
	_, err = mapper.New(s, gen, []algorithm.Indicator{nil})
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)
}

func TestLabels(t *testing.T) {
	pnn20, err := indicators.NewPNNx(indicators.NNxConfig{Threshold: 20})
	require.NoError(t, err)
	pnn50, err := indicators.NewPNNx(indicators.NNxConfig{})
	require.NoError(t, err)

	labels := mapper.Labels([]algorithm.Indicator{
		indicators.NewMean(), pnn20, pnn50, indicators.NewMean(),
	})
	assert.Equal(t, []string{"Mean", "PNNx(threshold=20)", "PNNx(threshold=50)", "Mean"}, labels)
}
