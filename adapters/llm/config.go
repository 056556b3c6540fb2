package llm

import (
	"fmt"
	"os"
	"strconv"

	"google.golang.org/genai"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTemperature    = 0.7
	defaultTopP           = 0.95
	defaultTopK           = 40
	defaultMaxTokens      = 500
	defaultTimeoutSeconds = 30
)

// GeminiConfig holds configuration for the Gemini adapter.
// Required fields:
// - APIKey: your Google AI API key
// Optional fields with defaults:
// - Model: the model name (default: "gemini-2.0-flash")
// - Temperature: sampling temperature between 0 and 1 (default: 0.7)
// - TopP: nucleus sampling value between 0 and 1 (default: 0.95)
// - TopK: top-k sampling value (default: 40)
// - MaxOutputTokens: response length cap (default: 500)
// - TimeoutSeconds: per-request timeout (default: 30)
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int
	TimeoutSeconds  int
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}

	if config.TopP != 0 && (config.TopP < 0 || config.TopP > 1) {
		return fmt.Errorf("topP must be between 0 and 1, got %f", config.TopP)
	}

	if config.TopK < 0 {
		return fmt.Errorf("topK must be positive, got %f", config.TopK)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewGeminiConfigFromEnv creates a GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}

	if tempStr := os.Getenv("GEMINI_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 32); err == nil && temp >= 0 && temp <= 1 {
			config.Temperature = float32(temp)
		}
	}

	if maxStr := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil && max > 0 {
			config.MaxOutputTokens = max
		}
	}

	return config
}

// hardcodedConfig carries the non-tunable parts of the assistant persona
type hardcodedConfig struct {
	SystemPrompt   string
	SafetySettings []*genai.SafetySetting
}

// GeminiHardcodedConfig is shared by every chat session
var GeminiHardcodedConfig = hardcodedConfig{
	SystemPrompt: `You are a helpful AI assistant for Emerging Software, a leading digital marketing agency in the Middle East.

COMPANY PROFILE:
- Provides services: Email Marketing, Digital Marketing, SEO, Content Writing, PPC, Social Media, Affiliate Marketing, Website Development & Design
- Focus: Middle Eastern market
- Locations: Pakistan, USA, Qatar
- Contact: director@emergingssoftware.com | +1 830 631 0316

Answer only from the product context you are given, stay friendly and professional, and keep responses to 3-5 sentences unless more detail is needed.`,
	SafetySettings: []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	},
}
