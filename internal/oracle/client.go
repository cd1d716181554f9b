// Package oracle wraps the external reasoning service. Every caller goes
// through the guarded-call utility so that unavailability or malformed
// output always resolves to a deterministic local default.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
)

// Generator is the single call shape the core depends on: instructions in,
// JSON text out. Exactly four call sites use it: question selection,
// dialogue turns, confidence scoring, final analysis.
type Generator interface {
	GenerateJSON(ctx context.Context, modelName, prompt string) (string, error)
}

// Client calls the Gemini generateContent API.
type Client struct {
	config *config.AIConfig
	client *http.Client
}

// NewClient creates an oracle client from AI config.
func NewClient(cfg *config.AIConfig) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// GenerateJSON sends one prompt and returns the raw JSON text the model
// produced. Returns ErrOracleUnavailable when the API is not configured or
// the call fails; callers recover via their local fallback.
func (c *Client) GenerateJSON(ctx context.Context, modelName, prompt string) (string, error) {
	if !c.config.IsEnabled() {
		return "", model.ErrOracleUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.TimeoutMS)*time.Millisecond)
	defer cancel()

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(modelName), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrOracleUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", model.ErrOracleUnavailable, resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrMalformedOracleOutput, err)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("%w: empty response", model.ErrMalformedOracleOutput)
}

// StripFences removes markdown code fences some models wrap around JSON.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = text[3:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimPrefix(strings.TrimSpace(text), "json")
	return strings.TrimSpace(text)
}
