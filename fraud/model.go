package fraud

import (
	"fmt"
	"math"

	"whaleopt"
)

// Logistic is a logistic-regression classifier over scaled features.  Its
// parameters are tuned by the optimizer as the flat vector
// [w_0 ... w_{dim-1}, bias].
type Logistic struct {
	Weights   []float64
	Bias      float64
	Threshold float64
}

// NumParams returns the optimizer search-space dimensionality for a dataset
// with dim features.
func NumParams(dim int) int { return dim + 1 }

// ParamBounds returns box bounds for the parameter vector of a dim-feature
// model.  [-10, 10] per parameter is plenty for features scaled into [0, 1].
func ParamBounds(dim int) (low, up []float64) {
	return whaleopt.ScalarBounds(-10, 10, NumParams(dim))
}

// NewLogistic builds a classifier from a parameter vector: the last entry is
// the bias, the rest are feature weights.
func NewLogistic(params []float64, threshold float64) (*Logistic, error) {
	if len(params) < 2 {
		return nil, fmt.Errorf("parameter vector needs at least one weight and a bias, got %v values", len(params))
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}
	n := len(params) - 1
	return &Logistic{
		Weights:   append([]float64{}, params[:n]...),
		Bias:      params[n],
		Threshold: threshold,
	}, nil
}

// Score returns the fraud probability for a feature row.
func (m *Logistic) Score(x []float64) float64 {
	z := m.Bias
	for j, w := range m.Weights {
		z += w * x[j]
	}
	return 1 / (1 + math.Exp(-z))
}

// Predict classifies a feature row: 1 when the score reaches the threshold.
func (m *Logistic) Predict(x []float64) int {
	if m.Score(x) >= m.Threshold {
		return 1
	}
	return 0
}

const logeps = 1e-12

// Fitness builds the objective handed to the optimizer: mean cross-entropy
// loss of the parameterized classifier over d.  Lower is better.  Parameter
// vectors of the wrong length yield +infinity rather than an error so a
// misconfigured run fails loudly in fitness rather than aborting.
func Fitness(d *Dataset) whaleopt.Objectiver {
	return whaleopt.Func(func(params []float64) float64 {
		if len(params) != NumParams(d.Dim()) || d.Len() == 0 {
			return math.Inf(1)
		}
		m, err := NewLogistic(params, 0.5)
		if err != nil {
			return math.Inf(1)
		}

		loss := 0.0
		for i, row := range d.Features {
			p := m.Score(row)
			if p < logeps {
				p = logeps
			} else if p > 1-logeps {
				p = 1 - logeps
			}
			if d.Labels[i] == 1 {
				loss -= math.Log(p)
			} else {
				loss -= math.Log(1 - p)
			}
		}
		return loss / float64(d.Len())
	})
}
