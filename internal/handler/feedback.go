package handler

import (
	"net/http"

	"trustlens/internal/models"
	"trustlens/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FeedbackHandler handles feedback-related requests.
type FeedbackHandler struct {
	feedbackRepo repository.FeedbackRepository
	log          *logrus.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedbackRepo repository.FeedbackRepository, log *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedbackRepo: feedbackRepo, log: log}
}

// SubmitFeedback stores one labeled review.
// POST /api/v1/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var input models.CreateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Errorf("Failed to bind JSON for feedback: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback := &models.Feedback{
		Review: input.Review,
		Label:  input.Label,
	}
	if err := h.feedbackRepo.SaveFeedback(feedback); err != nil {
		h.log.Errorf("Failed to save feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Feedback received",
		"data":    feedback,
	})
}

// GetAllFeedback returns all feedback entries.
// GET /api/v1/feedback
func (h *FeedbackHandler) GetAllFeedback(c *gin.Context) {
	entries, err := h.feedbackRepo.GetAllFeedback()
	if err != nil {
		h.log.Errorf("Failed to get feedback entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
