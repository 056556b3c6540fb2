package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/domain/repositories"
)

// retrievalTopK is how many catalog chunks back each answer
const retrievalTopK = 5

// casualResponses short-circuits small talk before any retrieval or model
// call. A query matches when, lowercased and trimmed, it equals or starts
// with a key.
var casualResponses = map[string]string{
	"hi":          "Hello! 👋 Welcome to Emerging Software. How can I assist you today?",
	"hello":       "Hi there! 😊 How can I help you with our services?",
	"hey":         "Hey! 👋 What would you like to know?",
	"how are you": "I'm doing great! 😊 Ready to help you succeed. What can I assist with?",
	"i'm fine":    "Great to hear! 😊 Now, how can I help your business?",
	"thanks":      "You're welcome! 🙌 Feel free to ask anything else.",
	"thank you":   "Happy to help! 😊",
	"bye":         "Goodbye! 👋 Have a great day!",
	"ok":          "Okay! Let me know if you need more info.",
	"yes":         "Great! What else would you like to know?",
	"no":          "No problem! Feel free to ask anything else.",
}

// AnswerService turns a user query into an answer: casual shortcut,
// catalog retrieval, then an LLM call with the retrieved context.
type AnswerService struct {
	llm       repositories.LargeLanguageModel
	retriever repositories.Retriever
	logger    *zap.Logger
}

// NewAnswerService creates a new answer service
func NewAnswerService(llm repositories.LargeLanguageModel, retriever repositories.Retriever, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		llm:       llm,
		retriever: retriever,
		logger:    logger,
	}
}

// CasualResponse returns the canned reply for small-talk queries
func CasualResponse(query string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(query))
	for key, resp := range casualResponses {
		if lower == key || strings.HasPrefix(lower, key) {
			return resp, true
		}
	}
	return "", false
}

// Answer produces the bot's reply for a single query
func (s *AnswerService) Answer(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	if resp, ok := CasualResponse(query); ok {
		s.logger.Info("Casual response matched", zap.String("query", query))
		return resp, nil
	}

	// Retrieval failures degrade to a placeholder context instead of
	// failing the request.
	productContext := s.retrieveContext(ctx, query)

	prompt := BuildPrompt(productContext, query)

	session, err := s.llm.GenerateChat(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create chat session: %w", err)
	}

	response, err := session.SendMessage(ctx, repositories.ChatMessage{
		Role:    repositories.UserRole,
		Content: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	answer := strings.TrimSpace(response.Content)
	s.logger.Info("Answer generated",
		zap.String("query_preview", truncate(query, 50)),
		zap.Int("answer_length", len(answer)))

	return answer, nil
}

func (s *AnswerService) retrieveContext(ctx context.Context, query string) string {
	chunks, err := s.retriever.Search(ctx, query, retrievalTopK)
	if err != nil {
		s.logger.Error("Error in vector search", zap.Error(err))
		return "Unable to retrieve context."
	}

	context := strings.TrimSpace(strings.Join(chunks, "\n"))
	if context == "" {
		return "No specific information found."
	}

	return context
}

// BuildPrompt assembles the answering prompt from retrieved context and
// the user's question.
func BuildPrompt(productContext, query string) string {
	return fmt.Sprintf(`PRODUCT CONTEXT:
%s

USER QUESTION: %s

INSTRUCTIONS:
1. Answer ONLY using the provided product data and company information
2. Be friendly, professional, and focused on solutions
3. Keep responses to 3-5 sentences unless more detail is needed
4. Include relevant contact info when appropriate
5. Use emojis sparingly for emphasis
6. If the question is outside our scope, politely redirect to our services
7. Never make up services or information not in the context
8. Encourage specific service inquiries or contact us for consultations

ANSWER:`, productContext, query)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
