package repository

import (
	"trustlens/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// FeedbackRepository handles database operations for the feedback table.
type FeedbackRepository interface {
	SaveFeedback(feedback *models.Feedback) error
	GetAllFeedback() ([]*models.Feedback, error)
	GetLabeledFeedback() ([]*models.Feedback, error)
}

type feedbackRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *sqlx.DB, log *logrus.Logger) FeedbackRepository {
	return &feedbackRepository{db: db, log: log}
}

// SaveFeedback saves a new feedback entry to the database.
func (r *feedbackRepository) SaveFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (review, label) VALUES ($1, $2) RETURNING id, created_at`
	return r.db.QueryRowx(query, feedback.Review, feedback.Label).StructScan(feedback)
}

// GetAllFeedback returns all feedback entries, newest first.
func (r *feedbackRepository) GetAllFeedback() ([]*models.Feedback, error) {
	var entries []*models.Feedback
	query := `SELECT id, review, label, created_at FROM feedback ORDER BY created_at DESC`
	if err := r.db.Select(&entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetLabeledFeedback returns feedback entries with a usable training label.
// Free-form labels are excluded; only the two class labels feed retraining.
func (r *feedbackRepository) GetLabeledFeedback() ([]*models.Feedback, error) {
	var entries []*models.Feedback
	query := `SELECT id, review, label, created_at FROM feedback WHERE label IN ('fake', 'genuine') ORDER BY id`
	if err := r.db.Select(&entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}
