package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"trustlens/internal/embeddings"
	"trustlens/internal/features"
	"trustlens/internal/preprocess"
)

// Review labels.
const (
	LabelGenuine = "genuine"
	LabelFake    = "fake"
)

// Origin records how a bundle came to exist.
type Origin string

const (
	// OriginLoaded means both artifacts were restored from the store.
	OriginLoaded Origin = "loaded"
	// OriginBootstrapped means the bundle was synthesized from the seed
	// fixture because no persisted artifacts existed.
	OriginBootstrapped Origin = "bootstrapped"
	// OriginRetrained means the bundle replaced a serving one after
	// retraining on collected feedback.
	OriginRetrained Origin = "retrained"
)

// Metadata carries the behavioral signals submitted with a review. A nil
// Metadata means none were provided and all signals default to zero.
type Metadata struct {
	Verified       bool
	AccountAgeDays int
}

// Bundle pairs a fitted embedder with a trained classifier as one versioned
// unit. A bundle is read-only after construction and safe to share across
// concurrent scoring calls; retraining builds a new bundle rather than
// mutating one that is serving traffic.
type Bundle struct {
	Embedder *embeddings.Embedder
	Clf      *Logistic
	Origin   Origin
}

// Load restores a bundle from the artifact store, or bootstraps one from the
// seed fixture when either artifact is missing. A bootstrap persists both
// artifacts immediately, so the next Load restores instead. Load is
// idempotent; the caller constructs the bundle once at startup and injects it
// into request handlers.
func Load(store ArtifactStore, cfg embeddings.Config, logger *zap.Logger) (*Bundle, error) {
	embedderBlob, embErr := store.Get(ArtifactEmbedder)
	clfBlob, clfErr := store.Get(ArtifactClassifier)

	if embErr == nil && clfErr == nil {
		embedder := &embeddings.Embedder{}
		if err := json.Unmarshal(embedderBlob, embedder); err != nil {
			return nil, fmt.Errorf("failed to restore embedder artifact: %w", err)
		}
		embedder.WithLogger(logger)

		clf, err := UnmarshalLogistic(clfBlob)
		if err != nil {
			return nil, fmt.Errorf("failed to restore classifier artifact: %w", err)
		}

		logger.Info("Model bundle restored from artifact store",
			zap.String("backend", string(embedder.Backend())),
			zap.Int("feature_width", clf.Width()))
		return &Bundle{Embedder: embedder, Clf: clf, Origin: OriginLoaded}, nil
	}

	if !errors.Is(embErr, ErrArtifactNotFound) && embErr != nil {
		return nil, embErr
	}
	if !errors.Is(clfErr, ErrArtifactNotFound) && clfErr != nil {
		return nil, clfErr
	}

	logger.Warn("No persisted model artifacts, bootstrapping from seed fixture")
	bundle, err := Train(SeedExamples(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap training failed: %w", err)
	}
	bundle.Origin = OriginBootstrapped

	if err := bundle.Persist(store); err != nil {
		return nil, fmt.Errorf("failed to persist bootstrapped bundle: %w", err)
	}
	return bundle, nil
}

// Train fits a fresh embedder and classifier on the examples and returns them
// as a new bundle. The feature-space contract is the same one Predict uses:
// embedding columns first, then behavioral, then temporal.
func Train(examples []TrainingExample, cfg embeddings.Config, logger *zap.Logger) (*Bundle, error) {
	if len(examples) == 0 {
		return nil, errors.New("cannot train on an empty example set")
	}

	texts := make([]string, len(examples))
	samples := make([]features.Sample, len(examples))
	labels := make([]float64, len(examples))
	for i, ex := range examples {
		clean := preprocess.Clean(ex.Text)
		texts[i] = clean
		samples[i] = features.Sample{
			Text:           clean,
			Verified:       ex.Verified,
			AccountAgeDays: ex.AccountAgeDays,
		}
		labels[i] = float64(ex.Label)
	}

	embedder := embeddings.New(cfg, logger)
	if err := embedder.Fit(texts); err != nil {
		return nil, err
	}
	E, err := embedder.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed training corpus: %w", err)
	}

	X := features.Assemble(E, features.Behavioral(samples), features.Temporal(samples))
	clf := &Logistic{}
	if err := clf.Fit(X, labels); err != nil {
		return nil, fmt.Errorf("classifier training failed: %w", err)
	}

	logger.Info("Trained model bundle",
		zap.Int("examples", len(examples)),
		zap.Int("feature_width", clf.Width()))
	return &Bundle{Embedder: embedder, Clf: clf, Origin: OriginRetrained}, nil
}

// Persist writes both artifacts to the store. Called once after bootstrap and
// after every retraining.
func (b *Bundle) Persist(store ArtifactStore) error {
	embedderBlob, err := json.Marshal(b.Embedder)
	if err != nil {
		return fmt.Errorf("failed to serialize embedder: %w", err)
	}
	clfBlob, err := b.Clf.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize classifier: %w", err)
	}

	if err := store.Put(ArtifactEmbedder, embedderBlob); err != nil {
		return err
	}
	return store.Put(ArtifactClassifier, clfBlob)
}

// Features builds the feature vector for one review using the same assembly
// contract as training: clean, embed, then append behavioral and temporal
// columns.
func (b *Bundle) Features(text string, meta *Metadata) (*mat.Dense, error) {
	clean := preprocess.Clean(text)

	E, err := b.Embedder.Transform([]string{clean})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	sample := features.Sample{Text: clean}
	if meta != nil {
		sample.Verified = meta.Verified
		sample.AccountAgeDays = meta.AccountAgeDays
	}
	samples := []features.Sample{sample}

	return features.Assemble(E, features.Behavioral(samples), features.Temporal(samples)), nil
}

// Predict scores one review. The label is fake iff the fake-class probability
// is at least 0.5; the trust score is the complement of that probability, so
// it always agrees with the threshold: genuine reviews score >= 0.5, fake
// ones below. Details seed the explanation payload with p_fake.
func (b *Bundle) Predict(text string, meta *Metadata) (label string, trustScore float64, details map[string]interface{}, err error) {
	X, err := b.Features(text, meta)
	if err != nil {
		return "", 0, nil, err
	}

	probs, err := b.Clf.PredictProba(X)
	if err != nil {
		return "", 0, nil, fmt.Errorf("classifier prediction failed: %w", err)
	}
	pFake := probs[0]

	label = LabelGenuine
	if pFake >= 0.5 {
		label = LabelFake
	}
	trustScore = 1 - pFake

	details = map[string]interface{}{"p_fake": pFake}
	return label, trustScore, details, nil
}

// FeatureWidth reports the width of the bundle's feature space.
func (b *Bundle) FeatureWidth() int { return b.Clf.Width() }
