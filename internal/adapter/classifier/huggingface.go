// Package classifier calls a hosted zero-shot classification model to map
// free-form ledger notes onto candidate labels.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"
)

// Client implements ports.Classifier against the Hugging Face inference API.
type Client struct {
	url   string
	token string
	http  *http.Client
}

// NewClient creates a classifier client.
func NewClient(cfg config.ClassifierConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:   cfg.URL,
		token: cfg.Token,
		http:  &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Inputs     []string           `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type classifyResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify runs zero-shot classification over a batch of texts. The result
// slice is positionally aligned with texts; each entry's labels are ordered
// by descending confidence.
func (c *Client) Classify(ctx context.Context, texts []string, candidateLabels []string) ([]domain.Classification, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(classifyRequest{
		Inputs:     texts,
		Parameters: classifyParameters{CandidateLabels: candidateLabels},
	})
	if err != nil {
		return nil, fmt.Errorf("encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, body)
	}

	var results []classifyResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("classifier returned %d results for %d inputs", len(results), len(texts))
	}

	out := make([]domain.Classification, len(results))
	for i, r := range results {
		out[i] = domain.Classification{Labels: r.Labels}
	}
	return out, nil
}
