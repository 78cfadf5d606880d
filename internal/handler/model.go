package handler

import (
	"net/http"

	"trustlens/internal/inference"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ModelHandler exposes bundle introspection and retraining.
type ModelHandler struct {
	svc *inference.Service
	log *logrus.Logger
}

// NewModelHandler creates a new model admin handler.
func NewModelHandler(svc *inference.Service, log *logrus.Logger) *ModelHandler {
	return &ModelHandler{svc: svc, log: log}
}

// GetModelInfo reports the bundle currently serving traffic.
// GET /api/v1/model/info
func (h *ModelHandler) GetModelInfo(c *gin.Context) {
	bundle := h.svc.Bundle()
	c.JSON(http.StatusOK, gin.H{
		"service_name":  "trustlens",
		"backend":       bundle.Embedder.Backend(),
		"feature_width": bundle.FeatureWidth(),
		"origin":        bundle.Origin,
	})
}

// Retrain rebuilds the bundle from seed data plus labeled feedback and swaps
// it in. Admin only.
// POST /api/v1/model/retrain
func (h *ModelHandler) Retrain(c *gin.Context) {
	result, err := h.svc.Retrain(c.Request.Context())
	if err != nil {
		h.log.Errorf("Retraining failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Retraining failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Model retrained",
		"result":  result,
	})
}
