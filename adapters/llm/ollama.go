package llm

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
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3"
	defaultOllamaTimeout = 60 * time.Second
)

// OllamaConfig holds configuration for the Ollama chat adapter.
// Both fields default to a local development setup.
type OllamaConfig struct {
	BaseURL string // Optional: Ollama server base URL (default: "http://localhost:11434")
	Model   string // Optional: chat model name (default: "llama3")
}

// OllamaLLM implements the LargeLanguageModel interface against a local
// Ollama server, for running the chatbot without a hosted provider.
type OllamaLLM struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// Ensure OllamaLLM implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*OllamaLLM)(nil)

// NewOllamaLLM creates a new Ollama LLM instance
func NewOllamaLLM(config OllamaConfig, logger *zap.Logger) *OllamaLLM {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
		logger.Info("Using default Ollama base URL", zap.String("baseURL", baseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultOllamaModel
		logger.Info("Using default Ollama model", zap.String("model", model))
	}

	return &OllamaLLM{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: defaultOllamaTimeout},
		logger:  logger,
	}
}

// GenerateChat creates a chat session with history
func (o *OllamaLLM) GenerateChat(_ context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return &OllamaChatSession{
		llm:     o,
		history: append([]repositories.ChatMessage(nil), history...),
	}, nil
}

// OllamaChatSession implements the ChatSession interface
type OllamaChatSession struct {
	llm     *OllamaLLM
	history []repositories.ChatMessage
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

// SendMessage sends a message and gets a response, updating the history
func (s *OllamaChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	messages := []ollamaChatMessage{
		{Role: "system", Content: GeminiHardcodedConfig.SystemPrompt},
	}
	for _, msg := range s.history {
		messages = append(messages, ollamaChatMessage{Role: ollamaRole(msg.Role), Content: msg.Content})
	}
	messages = append(messages, ollamaChatMessage{Role: "user", Content: message.Content})

	body, err := json.Marshal(ollamaChatRequest{
		Model:    s.llm.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := s.llm.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.llm.client.Do(httpReq)
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("failed to reach Ollama at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return repositories.ChatMessage{}, fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, string(errorBody))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("failed to decode chat response: %w", err)
	}

	responseText := strings.TrimSpace(out.Message.Content)
	if responseText == "" {
		return repositories.ChatMessage{}, fmt.Errorf("ollama returned an empty response")
	}

	response := repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: responseText,
	}
	s.history = append(s.history, message, response)

	return response, nil
}

// History returns the current conversation history
func (s *OllamaChatSession) History() ([]repositories.ChatMessage, error) {
	return append([]repositories.ChatMessage(nil), s.history...), nil
}

func ollamaRole(role repositories.Role) string {
	switch role {
	case repositories.AssistantRole:
		return "assistant"
	case repositories.SystemRole:
		return "system"
	default:
		return "user"
	}
}

// NewOllamaConfigFromEnv creates an OllamaConfig from environment variables
func NewOllamaConfigFromEnv() OllamaConfig {
	return OllamaConfig{
		BaseURL: os.Getenv("OLLAMA_BASE_URL"),
		Model:   os.Getenv("OLLAMA_MODEL"),
	}
}
