package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClaudeClassifier fulfills the Classifier contract with a hosted model.
// Deployments that opt into it trade the heuristic's determinism for model
// quality; it is never wired into determinism verification.
type ClaudeClassifier struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// ClaudeConfig holds classifier configuration.
type ClaudeConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultClaudeConfig returns default configuration.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-3-haiku-20240307",
		Timeout: 30 * time.Second,
	}
}

// NewClaudeClassifier creates a classifier backed by the Anthropic API.
func NewClaudeClassifier(config ClaudeConfig) *ClaudeClassifier {
	if config.BaseURL == "" {
		config.BaseURL = DefaultClaudeConfig().BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultClaudeConfig().Model
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClaudeConfig().Timeout
	}

	return &ClaudeClassifier{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Classify implements Classifier.
func (c *ClaudeClassifier) Classify(ctx context.Context, textA, textB string) (Label, float64, error) {
	response, err := c.callClaude(ctx, buildPrompt(textA, textB))
	if err != nil {
		return "", 0, fmt.Errorf("call claude: %w", err)
	}

	var verdict struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(response), &verdict); err != nil {
		return "", 0, fmt.Errorf("parse response: %w", err)
	}

	switch Label(verdict.Label) {
	case LabelContradiction, LabelNeutral, LabelEntailment:
		return Label(verdict.Label), verdict.Confidence, nil
	default:
		return "", 0, fmt.Errorf("unrecognized label %q", verdict.Label)
	}
}

func buildPrompt(textA, textB string) string {
	return fmt.Sprintf(`Classify the relationship between these two statements:

Statement A: "%s"
Statement B: "%s"

Respond with JSON:
{
  "label": "contradiction|neutral|entailment",
  "confidence": 0.0-1.0
}

Respond ONLY with valid JSON.`, textA, textB)
}

type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClassifier) callClaude(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: 200,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}

	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return cr.Content[0].Text, nil
}
