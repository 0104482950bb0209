package automl

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// learner fits a regressor on a design matrix.
type learner interface {
	params() string
	fit(ctx context.Context, x [][]float64, y []float64) (regressor, error)
}

// scaler standardizes columns to zero mean and unit variance. Constant
// columns keep a unit scale so they map to zero.
type scaler struct {
	mean []float64
	std  []float64
}

func newScaler(x [][]float64) scaler {
	p := len(x[0])
	s := scaler{mean: make([]float64, p), std: make([]float64, p)}
	col := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std == 0 {
			std = 1
		}
		s.mean[j], s.std[j] = mean, std
	}
	return s
}

func (s scaler) apply(x []float64) []float64 {
	z := make([]float64, len(x))
	for j, v := range x {
		z[j] = (v - s.mean[j]) / s.std[j]
	}
	return z
}

// meanLearner always predicts the training mean.
type meanLearner struct{}

type constant float64

func (c constant) predict([]float64) float64 { return float64(c) }

func (meanLearner) params() string { return "baseline" }

func (meanLearner) fit(_ context.Context, _ [][]float64, y []float64) (regressor, error) {
	return constant(stat.Mean(y, nil)), nil
}

// linearLearner is a Gaussian GLM. Lambda 0 fits ordinary least squares by
// QR; a positive lambda adds an L2 penalty on standardized coefficients.
type linearLearner struct {
	lambda float64
}

// ridgeFallback is used when the OLS design is rank deficient.
const ridgeFallback = 1e-6

type linearModel struct {
	sc        scaler
	intercept float64
	coef      []float64
}

func (m *linearModel) predict(x []float64) float64 {
	z := m.sc.apply(x)
	v := m.intercept
	for j, c := range m.coef {
		v += c * z[j]
	}
	return v
}

func (l linearLearner) params() string {
	if l.lambda == 0 {
		return "lambda=0"
	}
	return fmt.Sprintf("lambda=%g", l.lambda)
}

func (l linearLearner) fit(ctx context.Context, x [][]float64, y []float64) (regressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc := newScaler(x)
	z := make([][]float64, len(x))
	for i := range x {
		z[i] = sc.apply(x[i])
	}

	if l.lambda == 0 {
		if m, err := fitOLS(sc, z, y); err == nil {
			return m, nil
		}
		return fitRidge(sc, z, y, ridgeFallback)
	}
	return fitRidge(sc, z, y, l.lambda)
}

func fitOLS(sc scaler, z [][]float64, y []float64) (*linearModel, error) {
	n, p := len(z), len(z[0])
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d coefficients", ErrFit, n, p+1)
	}
	a := mat.NewDense(n, p+1, nil)
	for i, row := range z {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFit, err)
	}
	m := &linearModel{sc: sc, intercept: beta.AtVec(0), coef: make([]float64, p)}
	for j := range m.coef {
		m.coef[j] = beta.AtVec(j + 1)
	}
	return m, checkFinite(m)
}

// fitRidge solves (ZᵀZ + λnI)β = Zᵀ(y-ȳ). Z is centred, so the intercept is ȳ.
func fitRidge(sc scaler, z [][]float64, y []float64, lambda float64) (*linearModel, error) {
	n, p := len(z), len(z[0])
	ybar := stat.Mean(y, nil)

	zm := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range z {
		zm.SetRow(i, row)
		yc.SetVec(i, y[i]-ybar)
	}

	var gram mat.Dense
	gram.Mul(zm.T(), zm)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda*float64(n))
	}
	var rhs mat.VecDense
	rhs.MulVec(zm.T(), yc)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %w", ErrFit, err)
		}
	}
	m := &linearModel{sc: sc, intercept: ybar, coef: make([]float64, p)}
	for j := range m.coef {
		m.coef[j] = beta.AtVec(j)
	}
	return m, checkFinite(m)
}

func checkFinite(m *linearModel) error {
	for _, c := range append([]float64{m.intercept}, m.coef...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite coefficient", ErrFit)
		}
	}
	return nil
}
