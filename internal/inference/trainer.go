package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trustlens/internal/model"
)

// RetrainResult summarizes one retraining run.
type RetrainResult struct {
	Examples     int          `json:"examples"`
	FromFeedback int          `json:"from_feedback"`
	FeatureWidth int          `json:"feature_width"`
	Origin       model.Origin `json:"origin"`
}

// Retrain builds a new bundle from the seed fixture plus all labeled
// feedback, persists its artifacts, and atomically swaps it in for the one
// serving traffic. The old bundle keeps serving in-flight requests; it is
// never mutated.
func (s *Service) Retrain(ctx context.Context) (*RetrainResult, error) {
	examples := model.SeedExamples()

	fromFeedback := 0
	if s.feedbackRepo != nil {
		entries, err := s.feedbackRepo.GetLabeledFeedback()
		if err != nil {
			return nil, fmt.Errorf("failed to load labeled feedback: %w", err)
		}
		for _, entry := range entries {
			label := 0
			if entry.Label == model.LabelFake {
				label = 1
			}
			examples = append(examples, model.TrainingExample{Text: entry.Review, Label: label})
			fromFeedback++
		}
	}

	bundle, err := model.Train(examples, s.embCfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("retraining failed: %w", err)
	}

	if err := bundle.Persist(s.store); err != nil {
		return nil, fmt.Errorf("failed to persist retrained bundle: %w", err)
	}

	s.bundle.Store(bundle)
	s.logger.Info("Retrained model bundle swapped in",
		zap.Int("examples", len(examples)),
		zap.Int("from_feedback", fromFeedback),
		zap.Int("feature_width", bundle.FeatureWidth()))

	return &RetrainResult{
		Examples:     len(examples),
		FromFeedback: fromFeedback,
		FeatureWidth: bundle.FeatureWidth(),
		Origin:       bundle.Origin,
	}, nil
}
