package tabular_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/on-the-ground/physio_ive_go/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rd = "IBI\tlabel\tother\n" +
	"800\trest\tx\n" +
	"850\trest\ty\n" +
	"nan\ttask\tz\n"

func TestReadColumns(t *testing.T) {
	cols, err := tabular.ReadColumns(strings.NewReader(rd), '\t', "IBI", "label")
	require.NoError(t, err)

	ibi, err := cols.Floats("IBI")
	require.NoError(t, err)
	require.Len(t, ibi, 3)
	assert.Equal(t, []float64{800, 850}, ibi[:2])
	assert.True(t, math.IsNaN(ibi[2]))

	labels, err := cols.Strings("label")
	require.NoError(t, err)
	assert.Equal(t, []string{"rest", "rest", "task"}, labels)

	_, err = cols.Strings("other")
	assert.ErrorIs(t, err, tabular.ErrMissingColumn)
}

func TestReadColumns_Errors(t *testing.T) {
	_, err := tabular.ReadColumns(strings.NewReader(rd), '\t', "RR")
	assert.ErrorIs(t, err, tabular.ErrMissingColumn)

	cols, err := tabular.ReadColumns(strings.NewReader("IBI\nabc\n"), '\t')
	require.NoError(t, err)
	_, err = cols.Floats("IBI")
	assert.Error(t, err)

	_, err = tabular.ReadColumns(strings.NewReader(""), '\t')
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := tabular.WriteTable(&buf, []string{"Mean", "RMSSD", "Peaks"}, [][]any{
		{812.5, math.NaN(), []float64{1, 2.5}},
		{900.0, 12.25, nil},
	}, '\t')
	require.NoError(t, err)

	assert.Equal(t, "Mean\tRMSSD\tPeaks\n812.5\tnan\t[1 2.5]\n900\t12.25\t\n", buf.String())
}

func TestWriteTable_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	labels := []string{"Mean", "PNNx(threshold=20)"}
	require.NoError(t, tabular.WriteTable(&buf, labels, [][]any{{1.5, math.NaN()}}, '\t'))

	cols, err := tabular.ReadColumns(&buf, '\t')
	require.NoError(t, err)
	pnn, err := cols.Floats("PNNx(threshold=20)")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pnn[0]))
	mean, err := cols.Floats("Mean")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, mean)
}

func TestWriteTable_RaggedRow(t *testing.T) {
	var buf bytes.Buffer
	err := tabular.WriteTable(&buf, []string{"a", "b"}, [][]any{{1.0}}, ',')
	assert.Error(t, err)
}
