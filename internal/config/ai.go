package config

import "os"

// GeminiModels defines which Gemini models serve the four oracle call sites.
type GeminiModels struct {
	// Selector picks the next question (needs to be fast).
	Selector string `json:"selector"`

	// Dialogue generates interviewer turns (fast, conversational).
	Dialogue string `json:"dialogue"`

	// Confidence scores one answer (fast, cheap).
	Confidence string `json:"confidence"`

	// Analysis produces the final scoring report (deep, not latency-bound).
	Analysis string `json:"analysis"`
}

// AIConfig holds all reasoning-oracle configuration.
type AIConfig struct {
	APIKey    string       `json:"-"` // never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default oracle configuration.
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Selector:   getEnvOrDefault("GEMINI_MODEL_SELECTOR", "gemini-2.5-flash"),
			Dialogue:   getEnvOrDefault("GEMINI_MODEL_DIALOGUE", "gemini-2.5-flash"),
			Confidence: getEnvOrDefault("GEMINI_MODEL_CONFIDENCE", "gemini-2.0-flash"),
			Analysis:   getEnvOrDefault("GEMINI_MODEL_ANALYSIS", "gemini-2.0-flash"),
		},
		TimeoutMS: 15000,
	}
}

// IsEnabled returns true if the oracle API is configured.
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model.
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
