package inference

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"trustlens/internal/embeddings"
	"trustlens/internal/explain"
	"trustlens/internal/model"
	"trustlens/internal/models"
	"trustlens/internal/repository"
)

// ExplanationUnavailable is the placeholder attached to details.shap when the
// explanation stage fails. The prediction itself is unaffected.
const ExplanationUnavailable = "explanation unavailable"

// ErrEmptyText rejects a submission before it enters the pipeline.
var ErrEmptyText = errors.New("review text must not be empty")

// Translator is the external translation collaborator. Implementations may
// fail freely; the pipeline falls back to the original text.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// explainFn matches explain.Kernel; swappable so failure handling is testable.
type explainFn func(explain.PredictFn, []float64, *mat.Dense, int) (*explain.Attribution, error)

// Service is the inference orchestrator: it owns the shared model bundle and
// composes translation, scoring and explanation into one request-to-response
// transaction. Translation and explanation are best-effort; only the scoring
// step can fail a request.
type Service struct {
	bundle       atomic.Pointer[model.Bundle]
	translator   Translator
	store        model.ArtifactStore
	feedbackRepo repository.FeedbackRepository
	embCfg       embeddings.Config
	sampleBudget int
	explain      explainFn
	logger       *zap.Logger
}

// NewService wires the orchestrator. The bundle is constructed once at
// startup and injected here; the service holds the only mutable reference to
// it, swapped wholesale on retraining. A nil translator disables the
// translation stage.
func NewService(
	bundle *model.Bundle,
	translator Translator,
	store model.ArtifactStore,
	feedbackRepo repository.FeedbackRepository,
	embCfg embeddings.Config,
	sampleBudget int,
	logger *zap.Logger,
) *Service {
	if sampleBudget <= 0 {
		sampleBudget = explain.DefaultSampleBudget
	}
	s := &Service{
		translator:   translator,
		store:        store,
		feedbackRepo: feedbackRepo,
		embCfg:       embCfg,
		sampleBudget: sampleBudget,
		explain:      explain.Kernel,
		logger:       logger,
	}
	s.bundle.Store(bundle)
	return s
}

// Bundle returns the bundle currently serving traffic.
func (s *Service) Bundle() *model.Bundle {
	return s.bundle.Load()
}

// Predict runs the full pipeline for one review submission.
//
// Degradation points, in order: a failed translation keeps the original
// text; a failed explanation attaches a placeholder. The prediction step in
// between is mandatory and its failure propagates, since no fallback label
// exists.
func (s *Service) Predict(ctx context.Context, req models.PredictRequest) (*models.Prediction, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}

	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	text := req.Text
	if lang != "en" && s.translator != nil {
		translated, err := s.translator.Translate(ctx, text, "en")
		if err != nil {
			s.logger.Warn("Translation failed, scoring original text",
				zap.String("lang", lang), zap.Error(err))
		} else {
			text = translated
		}
	}

	bundle := s.bundle.Load()

	var meta *model.Metadata
	if req.Metadata != nil {
		meta = &model.Metadata{
			Verified:       req.Metadata.Verified,
			AccountAgeDays: req.Metadata.AccountAgeDays,
		}
	}

	label, trustScore, details, err := bundle.Predict(text, meta)
	if err != nil {
		return nil, err
	}

	details["shap"] = s.explainPrediction(bundle, text, meta)

	return &models.Prediction{
		Label:        label,
		TrustScore:   trustScore,
		Details:      details,
		Lang:         lang,
		ProcessingID: uuid.NewString(),
	}, nil
}

// explainPrediction rebuilds the feature vector for the scored text and runs
// the explainer. Any failure degrades to the placeholder string.
func (s *Service) explainPrediction(bundle *model.Bundle, text string, meta *model.Metadata) interface{} {
	X, err := bundle.Features(text, meta)
	if err != nil {
		s.logger.Warn("Explanation skipped, could not rebuild feature vector", zap.Error(err))
		return ExplanationUnavailable
	}

	predictFn := func(batch *mat.Dense) ([]float64, error) {
		return bundle.Clf.PredictProba(batch)
	}

	attr, err := s.explain(predictFn, X.RawRowView(0), nil, s.sampleBudget)
	if err != nil {
		s.logger.Warn("Explanation failed, attaching placeholder", zap.Error(err))
		return ExplanationUnavailable
	}
	return attr
}
