package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// encoderClient talks to a sentence-encoder inference endpoint that exposes a
// feature-extraction API: POST /models/<name> with a batch of texts, returning
// one dense vector per text.
type encoderClient struct {
	baseURL    string
	modelName  string
	httpClient *http.Client
}

type encodeRequest struct {
	Inputs []string `json:"inputs"`
}

func newEncoderClient(baseURL, modelName string) *encoderClient {
	return &encoderClient{
		baseURL:   baseURL,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // first call may hit a cold model load
		},
	}
}

// Encode requests embeddings for the given texts.
func (c *encoderClient) Encode(texts []string) ([][]float64, error) {
	jsonData, err := json.Marshal(encodeRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/models/"+c.modelName, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("encoder service returned status %d: %s", resp.StatusCode, string(body))
	}

	var vectors [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
