package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"trustlens/internal/embeddings"
	"trustlens/internal/explain"
	"trustlens/internal/model"
	"trustlens/internal/models"
)

type stubTranslator struct {
	out  string
	err  error
	seen []string
}

func (t *stubTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	t.seen = append(t.seen, text)
	if t.err != nil {
		return "", t.err
	}
	return t.out, nil
}

type stubFeedbackRepo struct {
	entries []*models.Feedback
	err     error
}

func (r *stubFeedbackRepo) SaveFeedback(f *models.Feedback) error { return nil }
func (r *stubFeedbackRepo) GetAllFeedback() ([]*models.Feedback, error) {
	return r.entries, r.err
}
func (r *stubFeedbackRepo) GetLabeledFeedback() ([]*models.Feedback, error) {
	return r.entries, r.err
}

func testService(t *testing.T, translator Translator) *Service {
	t.Helper()
	store, err := model.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := embeddings.Config{Backend: embeddings.BackendLexical}
	bundle, err := model.Load(store, cfg, zap.NewNop())
	require.NoError(t, err)
	return NewService(bundle, translator, store, &stubFeedbackRepo{}, cfg, 50, zap.NewNop())
}

func TestPredictEnglishSkipsTranslation(t *testing.T) {
	translator := &stubTranslator{out: "should never be used"}
	s := testService(t, translator)

	pred, err := s.Predict(context.Background(), models.PredictRequest{
		Text:     "great product",
		Lang:     "en",
		Metadata: &models.ReviewMetadata{Verified: true, AccountAgeDays: 365},
	})
	require.NoError(t, err)

	assert.Empty(t, translator.seen)
	assert.Equal(t, model.LabelGenuine, pred.Label)
	assert.GreaterOrEqual(t, pred.TrustScore, 0.5)
	assert.Equal(t, "en", pred.Lang)
	assert.NotEmpty(t, pred.ProcessingID)
	assert.Contains(t, pred.Details, "p_fake")
}

func TestPredictTranslatesNonEnglish(t *testing.T) {
	translator := &stubTranslator{out: "fake review buy now"}
	s := testService(t, translator)

	pred, err := s.Predict(context.Background(), models.PredictRequest{
		Text: "achetez maintenant",
		Lang: "fr",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"achetez maintenant"}, translator.seen)
	assert.Equal(t, model.LabelFake, pred.Label)
	assert.Equal(t, "fr", pred.Lang)
}

func TestPredictTranslationFailureIsNotFatal(t *testing.T) {
	translator := &stubTranslator{err: errors.New("service down")}
	s := testService(t, translator)

	pred, err := s.Predict(context.Background(), models.PredictRequest{
		Text: "ceci est un avis",
		Lang: "fr",
	})
	require.NoError(t, err, "translation failure must never fail the request")

	// Scored on the original, untranslated text.
	assert.Equal(t, []string{"ceci est un avis"}, translator.seen)
	assert.Contains(t, []string{model.LabelGenuine, model.LabelFake}, pred.Label)
	assert.GreaterOrEqual(t, pred.TrustScore, 0.0)
	assert.LessOrEqual(t, pred.TrustScore, 1.0)
}

func TestPredictNoTranslatorConfigured(t *testing.T) {
	s := testService(t, nil)

	pred, err := s.Predict(context.Background(), models.PredictRequest{Text: "bra produkt", Lang: "sv"})
	require.NoError(t, err)
	assert.Equal(t, "sv", pred.Lang)
}

func TestPredictEmptyTextRejected(t *testing.T) {
	s := testService(t, nil)
	_, err := s.Predict(context.Background(), models.PredictRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestPredictExplainerFailureAttachesPlaceholder(t *testing.T) {
	s := testService(t, nil)
	s.explain = func(explain.PredictFn, []float64, *mat.Dense, int) (*explain.Attribution, error) {
		return nil, errors.New("numerical error")
	}

	pred, err := s.Predict(context.Background(), models.PredictRequest{Text: "great product"})
	require.NoError(t, err, "explanation failure must never fail the request")

	assert.NotEmpty(t, pred.Label)
	assert.Equal(t, ExplanationUnavailable, pred.Details["shap"])
}

func TestPredictExplanationAttached(t *testing.T) {
	s := testService(t, nil)

	pred, err := s.Predict(context.Background(), models.PredictRequest{Text: "fake review buy now"})
	require.NoError(t, err)

	attr, ok := pred.Details["shap"].(*explain.Attribution)
	require.True(t, ok, "details.shap should carry an attribution block")
	assert.NotEmpty(t, attr.Indices)
	assert.Len(t, attr.Values, len(attr.Indices))
}

func TestRetrainSwapsBundle(t *testing.T) {
	s := testService(t, nil)
	s.feedbackRepo = &stubFeedbackRepo{entries: []*models.Feedback{
		{Review: "absolute garbage scam do not buy", Label: "fake"},
		{Review: "honest review of a decent product", Label: "genuine"},
	}}

	before := s.Bundle()
	result, err := s.Retrain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.FromFeedback)
	assert.Equal(t, len(model.SeedExamples())+2, result.Examples)
	assert.Equal(t, model.OriginRetrained, result.Origin)

	after := s.Bundle()
	assert.NotSame(t, before, after, "retrain must swap in a new bundle")

	// The old bundle keeps serving concurrent readers untouched.
	label, _, _, err := before.Predict("great product", nil)
	require.NoError(t, err)
	assert.Equal(t, model.LabelGenuine, label)
}

func TestRetrainFeedbackRepoFailure(t *testing.T) {
	s := testService(t, nil)
	s.feedbackRepo = &stubFeedbackRepo{err: errors.New("db down")}

	_, err := s.Retrain(context.Background())
	assert.Error(t, err)
}
