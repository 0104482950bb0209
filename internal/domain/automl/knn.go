package automl

import (
	"context"
	"fmt"
	"sort"
)

// knnLearner averages the targets of the k nearest standardized neighbours.
type knnLearner struct {
	k int
}

type knnModel struct {
	sc scaler
	z  [][]float64
	y  []float64
	k  int
}

func (l knnLearner) params() string { return fmt.Sprintf("k=%d", l.k) }

func (l knnLearner) fit(ctx context.Context, x [][]float64, y []float64) (regressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc := newScaler(x)
	z := make([][]float64, len(x))
	for i := range x {
		z[i] = sc.apply(x[i])
	}
	return &knnModel{sc: sc, z: z, y: append([]float64(nil), y...), k: max(1, min(l.k, len(y)))}, nil
}

func (m *knnModel) predict(x []float64) float64 {
	q := m.sc.apply(x)

	type neighbour struct {
		dist float64
		y    float64
	}
	ns := make([]neighbour, len(m.z))
	for i, p := range m.z {
		var d float64
		for j := range p {
			diff := p[j] - q[j]
			d += diff * diff
		}
		ns[i] = neighbour{dist: d, y: m.y[i]}
	}
	sort.SliceStable(ns, func(a, b int) bool { return ns[a].dist < ns[b].dist })

	var sum float64
	for _, n := range ns[:m.k] {
		sum += n.y
	}
	return sum / float64(m.k)
}
