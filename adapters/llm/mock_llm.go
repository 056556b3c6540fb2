package llm

import (
	"context"
	"fmt"

	"github.com/emergingssoftware/faqbot/domain/repositories"
)

// MockLLM is a canned-response implementation for tests and local
// development without any model backend.
type MockLLM struct {
	// Response overrides the generated reply when non-empty
	Response string
	// Err is returned by SendMessage when set
	Err error
}

// Ensure MockLLM implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*MockLLM)(nil)

// NewMockLLM creates a new mock LLM
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// GenerateChat implements repositories.LargeLanguageModel
func (m *MockLLM) GenerateChat(_ context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return &MockChatSession{
		llm:     m,
		history: append([]repositories.ChatMessage(nil), history...),
	}, nil
}

// MockChatSession implements repositories.ChatSession
type MockChatSession struct {
	llm     *MockLLM
	history []repositories.ChatMessage
}

// SendMessage implements repositories.ChatSession
func (s *MockChatSession) SendMessage(_ context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	if s.llm.Err != nil {
		return repositories.ChatMessage{}, s.llm.Err
	}

	response := s.llm.Response
	if response == "" {
		response = fmt.Sprintf("Thanks for asking about %q! Our team will be happy to help.", message.Content)
	}

	responseMessage := repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: response,
	}

	s.history = append(s.history, message, responseMessage)
	return responseMessage, nil
}

// History implements repositories.ChatSession
func (s *MockChatSession) History() ([]repositories.ChatMessage, error) {
	return append([]repositories.ChatMessage(nil), s.history...), nil
}
