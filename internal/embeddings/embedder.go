package embeddings

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Backend identifies the embedding variant an Embedder is running.
type Backend string

const (
	// BackendLexical is the tf-idf vocabulary backend.
	BackendLexical Backend = "tfidf"
	// BackendSemantic is the dense sentence-encoder backend.
	BackendSemantic Backend = "semantic"
)

// ErrEmptyCorpus is returned when Fit is called without any documents; a
// degenerate vocabulary would make every downstream feature vector useless.
var ErrEmptyCorpus = errors.New("cannot fit embedder on an empty corpus")

// Config selects the embedding backend for a new Embedder.
type Config struct {
	Backend   Backend `yaml:"backend"`
	ModelName string  `yaml:"model"`
	Endpoint  string  `yaml:"endpoint"`
}

// Embedder converts cleaned review text into fixed-width numeric vectors.
//
// It is a two-state machine: the semantic backend may transition to the
// lexical one exactly once, when the encoder service proves unreachable, and
// never back. The transition is guarded so concurrent callers observe a
// consistent backend; after the downgrade the semantic path is never retried,
// even if the encoder later becomes available.
type Embedder struct {
	mu        sync.RWMutex
	backend   Backend
	modelName string
	endpoint  string
	dim       int

	vectorizer tfidfVectorizer
	encoder    *encoderClient
	downgrade  sync.Once

	logger *zap.Logger
}

// New returns an Embedder for the configured backend. Unknown backends fall
// back to lexical.
func New(cfg Config, logger *zap.Logger) *Embedder {
	backend := cfg.Backend
	if backend != BackendSemantic {
		backend = BackendLexical
	}
	return &Embedder{
		backend:   backend,
		modelName: cfg.ModelName,
		endpoint:  cfg.Endpoint,
		logger:    logger,
	}
}

// Backend reports the currently active variant.
func (e *Embedder) Backend() Backend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.backend
}

// Width reports the embedding width: the vocabulary size for the lexical
// backend, the encoder dimension for the semantic one. Zero until the first
// Fit or Transform establishes it.
func (e *Embedder) Width() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.backend == BackendLexical {
		return e.vectorizer.Width()
	}
	return e.dim
}

// Fit trains the lexical vocabulary on the corpus. It is a no-op for the
// semantic backend, which needs no fitting.
func (e *Embedder) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == BackendLexical {
		e.vectorizer.Fit(corpus)
	}
	return nil
}

// Transform embeds each text into one row of the returned matrix.
//
// Lexical quirk, kept deliberately: if the vocabulary was never fitted, the
// first batch fits it. Repeated cold starts on different inputs silently
// change the output width, so callers must fit once and reuse the instance.
func (e *Embedder) Transform(texts []string) (*mat.Dense, error) {
	if e.Backend() == BackendSemantic {
		vectors, err := e.encode(texts)
		if err == nil {
			return e.toMatrix(vectors)
		}
		e.downgradeToLexical(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.vectorizer.Fitted() {
		e.vectorizer.Fit(texts)
	}
	out := e.vectorizer.Transform(texts)
	if out == nil {
		return nil, ErrEmptyCorpus
	}
	return out, nil
}

func (e *Embedder) encode(texts []string) ([][]float64, error) {
	e.mu.Lock()
	if e.encoder == nil {
		// Lazy client construction on the first semantic transform.
		e.encoder = newEncoderClient(e.endpoint, e.modelName)
	}
	encoder := e.encoder
	e.mu.Unlock()

	return encoder.Encode(texts)
}

// downgradeToLexical performs the one-way semantic->lexical transition. A few
// concurrent callers may redundantly fail the semantic path before the switch
// is observed; the transition itself happens exactly once.
func (e *Embedder) downgradeToLexical(cause error) {
	e.downgrade.Do(func() {
		e.logger.Warn("semantic encoder unavailable, permanently falling back to tf-idf",
			zap.String("model", e.modelName), zap.Error(cause))
		e.mu.Lock()
		e.backend = BackendLexical
		e.mu.Unlock()
	})
}

// toMatrix converts encoder output into an L2-normalized dense matrix and
// records the encoder dimension.
func (e *Embedder) toMatrix(vectors [][]float64) (*mat.Dense, error) {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("encoder returned no dimensions")
	}
	dim := len(vectors[0])

	out := mat.NewDense(len(vectors), dim, nil)
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, errors.New("encoder returned ragged vectors")
		}
		row := out.RawRowView(i)
		copy(row, vec)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}

	e.mu.Lock()
	e.dim = dim
	e.mu.Unlock()
	return out, nil
}

// state is the serialized form of an Embedder; it round-trips exactly through
// the artifact store.
type state struct {
	Backend   Backend         `json:"backend"`
	ModelName string          `json:"model_name"`
	Endpoint  string          `json:"endpoint"`
	Dim       int             `json:"dim"`
	Lexical   tfidfVectorizer `json:"lexical"`
}

// MarshalJSON serializes the embedder state for persistence.
func (e *Embedder) MarshalJSON() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return json.Marshal(state{
		Backend:   e.backend,
		ModelName: e.modelName,
		Endpoint:  e.endpoint,
		Dim:       e.dim,
		Lexical:   e.vectorizer,
	})
}

// UnmarshalJSON restores a persisted embedder.
func (e *Embedder) UnmarshalJSON(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	e.backend = s.Backend
	e.modelName = s.ModelName
	e.endpoint = s.Endpoint
	e.dim = s.Dim
	e.vectorizer = s.Lexical
	e.vectorizer.buildIndex()
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return nil
}

// WithLogger attaches a logger to an embedder restored from the artifact
// store and returns the same instance.
func (e *Embedder) WithLogger(logger *zap.Logger) *Embedder {
	e.logger = logger
	return e
}
