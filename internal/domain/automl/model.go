package automl

import (
	"fmt"
	"slices"
)

// Model is a fitted regressor addressed by feature name.
type Model interface {
	ID() string
	Algo() string
	// Params describes the hyperparameters the model was trained with.
	Params() string
	Features() []string
	// Predict returns the estimate for one row. The row must carry every
	// trained feature; extra keys are ignored.
	Predict(row map[string]float64) (float64, error)
}

// regressor is the fitted core a learner produces.
type regressor interface {
	predict(x []float64) float64
}

type trainedModel struct {
	id       string
	algo     string
	params   string
	features []string
	reg      regressor
}

func (m *trainedModel) ID() string         { return m.id }
func (m *trainedModel) Algo() string       { return m.algo }
func (m *trainedModel) Params() string     { return m.params }
func (m *trainedModel) Features() []string { return slices.Clone(m.features) }

func (m *trainedModel) Predict(row map[string]float64) (float64, error) {
	for _, c := range m.features {
		if _, ok := row[c]; !ok {
			return 0, fmt.Errorf("model %s: %w: %s", m.id, ErrMissingFeature, c)
		}
	}
	x, err := vectorize(m.features, row)
	if err != nil {
		return 0, fmt.Errorf("model %s: %w", m.id, err)
	}
	return m.reg.predict(x), nil
}
