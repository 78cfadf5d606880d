package model

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Training hyperparameters. Fixed so that repeated bootstraps on the same
// seed data train to the same decision boundary.
const (
	learningRate = 0.1
	iterations   = 500
	l2Penalty    = 0.01
)

// ErrWidthMismatch is returned when a feature matrix does not match the width
// the classifier was trained with.
var ErrWidthMismatch = errors.New("feature width does not match trained classifier")

// Logistic is a binary logistic regression classifier for the fake/genuine
// decision. Training is deterministic full-batch gradient descent from a zero
// initialization; inputs are standardized internally so the behavioral
// columns (account age, text length) do not swamp the tf-idf columns.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

// Fit trains the classifier on X (one row per example) against binary labels
// y, where 1 marks the fake class.
func (l *Logistic) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.New("cannot fit classifier on an empty matrix")
	}
	if rows != len(y) {
		return errors.New("label count does not match row count")
	}

	l.fitScaler(X)
	Z := l.standardize(X)

	l.Weights = make([]float64, cols)
	l.Bias = 0

	n := float64(rows)
	grad := make([]float64, cols)
	for iter := 0; iter < iterations; iter++ {
		var biasGrad float64
		for j := range grad {
			grad[j] = 0
		}

		for i := 0; i < rows; i++ {
			row := Z.RawRowView(i)
			err := sigmoid(dot(row, l.Weights)+l.Bias) - y[i]
			for j, x := range row {
				grad[j] += err * x
			}
			biasGrad += err
		}

		for j := range l.Weights {
			l.Weights[j] -= learningRate * (grad[j]/n + l2Penalty*l.Weights[j])
		}
		l.Bias -= learningRate * biasGrad / n
	}
	return nil
}

// PredictProba returns the fake-class probability for each row of X.
func (l *Logistic) PredictProba(X *mat.Dense) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != len(l.Weights) {
		return nil, ErrWidthMismatch
	}

	Z := l.standardize(X)
	probs := make([]float64, rows)
	for i := 0; i < rows; i++ {
		probs[i] = sigmoid(dot(Z.RawRowView(i), l.Weights) + l.Bias)
	}
	return probs, nil
}

// Width reports the feature width the classifier was trained with.
func (l *Logistic) Width() int { return len(l.Weights) }

// Marshal serializes the trained classifier for the artifact store.
func (l *Logistic) Marshal() ([]byte, error) { return json.Marshal(l) }

// UnmarshalLogistic restores a classifier persisted with Marshal.
func UnmarshalLogistic(blob []byte) (*Logistic, error) {
	var l Logistic
	if err := json.Unmarshal(blob, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Logistic) fitScaler(X *mat.Dense) {
	rows, cols := X.Dims()
	l.Means = make([]float64, cols)
	l.Scales = make([]float64, cols)

	n := float64(rows)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += X.At(i, j)
		}
		mean := sum / n

		var variance float64
		for i := 0; i < rows; i++ {
			d := X.At(i, j) - mean
			variance += d * d
		}
		scale := math.Sqrt(variance / n)
		if scale == 0 {
			scale = 1 // constant column carries no signal
		}

		l.Means[j] = mean
		l.Scales[j] = scale
	}
}

func (l *Logistic) standardize(X *mat.Dense) *mat.Dense {
	rows, cols := X.Dims()
	Z := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := X.RawRowView(i)
		dst := Z.RawRowView(i)
		for j := 0; j < cols; j++ {
			dst[j] = (src[j] - l.Means[j]) / l.Scales[j]
		}
	}
	return Z
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
