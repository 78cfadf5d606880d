package handler

import (
	"errors"
	"net/http"

	"trustlens/internal/inference"
	"trustlens/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PredictHandler exposes the trust-scoring pipeline over HTTP.
type PredictHandler struct {
	svc *inference.Service
	log *logrus.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(svc *inference.Service, log *logrus.Logger) *PredictHandler {
	return &PredictHandler{svc: svc, log: log}
}

// Predict scores one review submission.
// POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req models.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for prediction: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pred, err := h.svc.Predict(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, inference.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorf("Prediction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"label":       pred.Label,
		"trust_score": pred.TrustScore,
		"explanation": pred.Details,
		"meta": gin.H{
			"lang":          pred.Lang,
			"processing_id": pred.ProcessingID,
		},
	})
}
