package automl

import (
	"fmt"
	"math"
	"slices"
)

// Frame is a dense labeled table. X rows follow Columns order.
type Frame struct {
	Columns []string
	Target  string
	X       [][]float64
	Y       []float64
}

// NewFrame builds a frame from keyed rows. Every row must carry every
// feature and the target.
func NewFrame(features []string, target string, rows []map[string]float64) (*Frame, error) {
	f := &Frame{
		Columns: slices.Clone(features),
		Target:  target,
		X:       make([][]float64, 0, len(rows)),
		Y:       make([]float64, 0, len(rows)),
	}
	for i, row := range rows {
		x, err := vectorize(f.Columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		y, ok := row[target]
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %s", i, ErrMissingColumn, target)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("row %d: %w: %s", i, ErrInvalidValue, target)
		}
		f.X = append(f.X, x)
		f.Y = append(f.Y, y)
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Y) }

// vectorize orders row values by columns.
func vectorize(columns []string, row map[string]float64) ([]float64, error) {
	x := make([]float64, len(columns))
	for j, c := range columns {
		v, ok := row[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, c)
		}
		x[j] = v
	}
	return x, nil
}

// take returns the rows at idx. Row slices are shared, not copied.
func take(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, k := range idx {
		xs[i] = x[k]
		ys[i] = y[k]
	}
	return xs, ys
}
