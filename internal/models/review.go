package models

// ReviewMetadata carries the behavioral signals submitted with a review.
// Missing fields default to false/0 in the pipeline.
type ReviewMetadata struct {
	Verified       bool `json:"verified"`
	AccountAgeDays int  `json:"account_age_days" binding:"min=0"`
}

// PredictRequest is one review submission: the unit of work for a single
// pipeline invocation. Immutable once received.
type PredictRequest struct {
	Text     string          `json:"text" binding:"required"`
	Lang     string          `json:"lang"`
	Metadata *ReviewMetadata `json:"metadata"`
}

// Prediction is the pipeline's result for one review. Details always carries
// p_fake; when explanation succeeded it also carries a "shap" attribution
// block, otherwise a textual placeholder.
type Prediction struct {
	Label        string                 `json:"label"`
	TrustScore   float64                `json:"trust_score"`
	Details      map[string]interface{} `json:"explanation"`
	Lang         string                 `json:"lang"`
	ProcessingID string                 `json:"processing_id"`
}
