package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBehavioralColumns(t *testing.T) {
	samples := []Sample{
		{Text: "great product", Verified: true, AccountAgeDays: 365},
		{Text: "meh"}, // missing metadata defaults to false/0
	}

	b := Behavioral(samples)
	rows, cols := b.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, len(BehavioralColumns), cols)

	assert.Equal(t, 1.0, b.At(0, 0))
	assert.Equal(t, 365.0, b.At(0, 1))
	assert.Equal(t, 13.0, b.At(0, 2)) // rune count of "great product"
	assert.Equal(t, 2.0, b.At(0, 3))

	assert.Equal(t, 0.0, b.At(1, 0))
	assert.Equal(t, 0.0, b.At(1, 1))
	assert.Equal(t, 3.0, b.At(1, 2))
	assert.Equal(t, 1.0, b.At(1, 3))
}

func TestTemporalIsEmpty(t *testing.T) {
	assert.Nil(t, Temporal([]Sample{{Text: "x"}}))
}

func TestAssembleOrderAndWidth(t *testing.T) {
	embedding := mat.NewDense(1, 3, []float64{0.1, 0.2, 0.3})
	samples := []Sample{{Text: "great product", Verified: true, AccountAgeDays: 7}}

	x := Assemble(embedding, Behavioral(samples), Temporal(samples))
	rows, cols := x.Dims()
	require.Equal(t, 1, rows)
	require.Equal(t, 3+len(BehavioralColumns), cols)

	// Embedding columns first, behavioral after.
	assert.Equal(t, 0.1, x.At(0, 0))
	assert.Equal(t, 0.3, x.At(0, 2))
	assert.Equal(t, 1.0, x.At(0, 3)) // verified
	assert.Equal(t, 7.0, x.At(0, 4)) // account_age_days
}

func TestAssembleWidthConstantAcrossRowCounts(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		samples := make([]Sample, n)
		for i := range samples {
			samples[i] = Sample{Text: "repeat repeat"}
		}
		embedding := mat.NewDense(n, 5, nil)

		x := Assemble(embedding, Behavioral(samples), Temporal(samples))
		rows, cols := x.Dims()
		assert.Equal(t, n, rows)
		assert.Equal(t, 5+len(BehavioralColumns), cols)
	}
}

func TestAssembleWithoutEmbedding(t *testing.T) {
	samples := []Sample{{Text: "only behavioral"}}
	x := Assemble(nil, Behavioral(samples), Temporal(samples))
	_, cols := x.Dims()
	assert.Equal(t, len(BehavioralColumns), cols)
}
