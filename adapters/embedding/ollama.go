package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/domain/repositories"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "all-minilm"
	defaultTimeout = 30 * time.Second
)

// OllamaConfig holds configuration for the Ollama embedding adapter.
// Required fields: none, everything has a local-development default.
type OllamaConfig struct {
	BaseURL string // Optional: Ollama server base URL (default: "http://localhost:11434")
	Model   string // Optional: embedding model name (default: "all-minilm")
}

// OllamaEmbedder implements Embedder using a local Ollama server
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// Ensure OllamaEmbedder implements the Embedder interface
var _ repositories.Embedder = (*OllamaEmbedder)(nil)

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates a new embedder backed by an Ollama server
func NewOllamaEmbedder(config OllamaConfig, logger *zap.Logger) *OllamaEmbedder {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
		logger.Info("Using default Ollama base URL", zap.String("baseURL", baseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default embedding model", zap.String("model", model))
	}

	return &OllamaEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// Embed converts text into a vector using the Ollama embeddings API
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	body, err := json.Marshal(embeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := e.baseURL + "/api/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Ollama at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embeddings returned %d: %s", resp.StatusCode, string(errorBody))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	return out.Embedding, nil
}

// NewOllamaConfigFromEnv creates an OllamaConfig from environment variables
func NewOllamaConfigFromEnv() OllamaConfig {
	return OllamaConfig{
		BaseURL: os.Getenv("OLLAMA_BASE_URL"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	}
}
