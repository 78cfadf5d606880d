package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLogisticSeparatesTrainingData(t *testing.T) {
	// Two well-separated clusters on one axis.
	X := mat.NewDense(6, 2, []float64{
		0.0, 1.0,
		0.1, 0.9,
		0.2, 1.1,
		5.0, -1.0,
		5.1, -0.9,
		4.9, -1.1,
	})
	y := []float64{0, 0, 0, 1, 1, 1}

	var clf Logistic
	require.NoError(t, clf.Fit(X, y))

	probs, err := clf.PredictProba(X)
	require.NoError(t, err)
	for i, p := range probs {
		if y[i] == 0 {
			assert.Less(t, p, 0.5, "row %d", i)
		} else {
			assert.GreaterOrEqual(t, p, 0.5, "row %d", i)
		}
	}
}

func TestLogisticDeterministic(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		0, 1, 3,
		1, 1, 400,
		0, 0, 1,
	})
	y := []float64{0, 0, 1, 1}

	var a, b Logistic
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.Bias, b.Bias)
	assert.Equal(t, a.Weights, b.Weights)
}

func TestLogisticWidthMismatch(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	var clf Logistic
	require.NoError(t, clf.Fit(X, []float64{0, 1}))

	_, err := clf.PredictProba(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestLogisticRoundTrip(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	var clf Logistic
	require.NoError(t, clf.Fit(X, []float64{0, 1}))

	blob, err := clf.Marshal()
	require.NoError(t, err)
	restored, err := UnmarshalLogistic(blob)
	require.NoError(t, err)

	want, err := clf.PredictProba(X)
	require.NoError(t, err)
	got, err := restored.PredictProba(X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}
