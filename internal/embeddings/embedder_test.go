package embeddings

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func lexicalEmbedder(t *testing.T) *Embedder {
	t.Helper()
	return New(Config{Backend: BackendLexical}, zap.NewNop())
}

func TestLexicalFitTransform(t *testing.T) {
	e := lexicalEmbedder(t)
	corpus := []string{"great product", "fake review buy now", "works as expected"}
	require.NoError(t, e.Fit(corpus))

	m, err := e.Transform(corpus)
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, len(corpus), rows)
	assert.Equal(t, e.Width(), cols)
	assert.LessOrEqual(t, cols, maxVocabulary)

	// Rows are L2-normalized.
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += m.At(i, j) * m.At(i, j)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-9)
	}
}

func TestLexicalVocabularyIncludesBigrams(t *testing.T) {
	var v tfidfVectorizer
	v.Fit([]string{"fake review buy now"})
	assert.Contains(t, v.Terms, "fake review")
	assert.Contains(t, v.Terms, "buy now")
	assert.Contains(t, v.Terms, "fake")
}

func TestLexicalColdStartAutoFit(t *testing.T) {
	// Documented quirk: an unfitted lexical embedder fits itself on the
	// first batch, so the width depends on whatever arrived first.
	e := lexicalEmbedder(t)
	m, err := e.Transform([]string{"one two three"})
	require.NoError(t, err)
	_, cols := m.Dims()
	assert.Equal(t, cols, e.Width())
	assert.Greater(t, cols, 0)
}

func TestFitEmptyCorpus(t *testing.T) {
	e := lexicalEmbedder(t)
	assert.ErrorIs(t, e.Fit(nil), ErrEmptyCorpus)
}

func TestSemanticBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req encodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		vectors := make([][]float64, len(req.Inputs))
		for i := range vectors {
			vectors[i] = []float64{3, 4} // normalizes to (0.6, 0.8)
		}
		require.NoError(t, json.NewEncoder(w).Encode(vectors))
	}))
	defer srv.Close()

	e := New(Config{Backend: BackendSemantic, ModelName: "encoder-small", Endpoint: srv.URL}, zap.NewNop())
	m, err := e.Transform([]string{"great product"})
	require.NoError(t, err)

	assert.Equal(t, BackendSemantic, e.Backend())
	assert.Equal(t, 2, e.Width())
	assert.InDelta(t, 0.6, m.At(0, 0), 1e-9)
	assert.InDelta(t, 0.8, m.At(0, 1), 1e-9)
}

func TestSemanticDowngradeIsOneWay(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([][]float64{{1, 0}})
	}))
	defer srv.Close()

	e := New(Config{Backend: BackendSemantic, ModelName: "encoder-small", Endpoint: srv.URL}, zap.NewNop())

	// First transform fails the semantic path and downgrades.
	_, err := e.Transform([]string{"great product"})
	require.NoError(t, err)
	assert.Equal(t, BackendLexical, e.Backend())

	// The encoder recovering afterwards must not matter: the downgrade
	// holds for the lifetime of the instance.
	healthy.Store(true)
	m, err := e.Transform([]string{"great product"})
	require.NoError(t, err)
	assert.Equal(t, BackendLexical, e.Backend())
	_, cols := m.Dims()
	assert.Equal(t, e.Width(), cols)
}

func TestEmbedderRoundTrip(t *testing.T) {
	e := lexicalEmbedder(t)
	corpus := []string{"great product", "awful scam", "legit purchase"}
	require.NoError(t, e.Fit(corpus))

	blob, err := json.Marshal(e)
	require.NoError(t, err)

	restored := &Embedder{}
	require.NoError(t, json.Unmarshal(blob, restored))
	restored.WithLogger(zap.NewNop())

	assert.Equal(t, e.Backend(), restored.Backend())
	assert.Equal(t, e.Width(), restored.Width())

	want, err := e.Transform([]string{"great scam"})
	require.NoError(t, err)
	got, err := restored.Transform([]string{"great scam"})
	require.NoError(t, err)
	assert.True(t, got.RawMatrix().Cols == want.RawMatrix().Cols)
	assert.InDeltaSlice(t, want.RawRowView(0), got.RawRowView(0), 1e-12)
}
