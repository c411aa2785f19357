// Package tabular reads input columns from, and writes result tables to,
// delimited text with a header line.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// Columns maps a header name to the cells below it.
type Columns map[string][]string

// ReadColumns reads the named columns of a headed delimited file.
// With no names, every column is read.
func ReadColumns(r io.Reader, sep rune, names ...string) (Columns, error) {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	at := make(map[string]int, len(header))
	for i, h := range header {
		at[strings.TrimSpace(h)] = i
	}
	if len(names) == 0 {
		names = header
	}
	for _, n := range names {
		if _, ok := at[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, n)
		}
	}

	cols := make(Columns, len(names))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return cols, nil
		}
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			cols[n] = append(cols[n], record[at[n]])
		}
	}
}

// Strings returns the raw cells of a column.
func (c Columns) Strings(name string) ([]string, error) {
	cells, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return cells, nil
}

// Floats parses a column. Empty cells and "nan" become NaN.
func (c Columns) Floats(name string) ([]float64, error) {
	cells, err := c.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "nan") {
			out[i] = math.NaN()
			continue
		}
		out[i], err = strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
		}
	}
	return out, nil
}

// WriteTable writes a header line of labels then one line per row,
// without an index column.
func WriteTable(w io.Writer, labels []string, rows [][]any, sep rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = sep

	if err := writer.Write(labels); err != nil {
		return err
	}
	record := make([]string, len(labels))
	for i, row := range rows {
		if len(row) != len(labels) {
			return fmt.Errorf("row %d has %d cells for %d labels", i, len(row), len(labels))
		}
		for j, cell := range row {
			record[j] = FormatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatCell renders a result value: floats in shortest form, NaN as "nan",
// vectors space-separated inside brackets.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(x) {
			return "nan"
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = FormatCell(f)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}
