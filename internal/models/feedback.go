package models

import "time"

// Feedback represents a user-submitted review label stored in the 'feedback'
// table. Labeled rows double as the retraining corpus.
type Feedback struct {
	ID        int64     `db:"id" json:"id"`
	Review    string    `db:"review" json:"review"`
	Label     string    `db:"label" json:"label"` // "fake", "genuine" or free-form
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateFeedbackInput represents input for submitting feedback
type CreateFeedbackInput struct {
	Review string `json:"review" binding:"required"`
	Label  string `json:"label"`
}
