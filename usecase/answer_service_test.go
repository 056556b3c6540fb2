package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/adapters/llm"
)

// stubRetriever returns fixed chunks or an error
type stubRetriever struct {
	chunks []string
	err    error

	lastQuery string
	lastK     int
}

func (r *stubRetriever) Search(_ context.Context, query string, k int) ([]string, error) {
	r.lastQuery = query
	r.lastK = k
	return r.chunks, r.err
}

func TestCasualResponse(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"hi", true},
		{"Hello", true},
		{"  THANKS  ", true},
		{"hey there, quick question", true},
		{"What is your return policy?", false},
		{"", false},
	}

	for _, tc := range cases {
		_, ok := CasualResponse(tc.query)
		if ok != tc.want {
			t.Errorf("CasualResponse(%q): expected match=%v, got %v", tc.query, tc.want, ok)
		}
	}
}

func TestAnswerCasualShortCircuit(t *testing.T) {
	retriever := &stubRetriever{}
	mockLLM := llm.NewMockLLM()
	mockLLM.Err = errors.New("llm must not be called")

	service := NewAnswerService(mockLLM, retriever, zap.NewNop())

	answer, err := service.Answer(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if !strings.Contains(answer, "Hi there") {
		t.Errorf("Expected casual greeting, got %q", answer)
	}

	if retriever.lastQuery != "" {
		t.Error("Retriever should not be called for casual queries")
	}
}

func TestAnswerUsesRetrievedContext(t *testing.T) {
	retriever := &stubRetriever{chunks: []string{
		"FAQ - Q: What is your return policy? A: 30 days",
		"Contact Email: director@emergingssoftware.com",
	}}
	mockLLM := llm.NewMockLLM()
	mockLLM.Response = "30 days"

	service := NewAnswerService(mockLLM, retriever, zap.NewNop())

	answer, err := service.Answer(context.Background(), "What is your return policy?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer != "30 days" {
		t.Errorf("Expected answer '30 days', got %q", answer)
	}

	if retriever.lastQuery != "What is your return policy?" {
		t.Errorf("Expected query passed to retriever, got %q", retriever.lastQuery)
	}

	if retriever.lastK != retrievalTopK {
		t.Errorf("Expected k=%d, got %d", retrievalTopK, retriever.lastK)
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	service := NewAnswerService(llm.NewMockLLM(), &stubRetriever{}, zap.NewNop())

	if _, err := service.Answer(context.Background(), "   "); err == nil {
		t.Error("Expected error for empty query")
	}
}

func TestAnswerRetrievalFailureDegrades(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("index unavailable")}
	mockLLM := llm.NewMockLLM()
	mockLLM.Response = "Please contact us directly."

	service := NewAnswerService(mockLLM, retriever, zap.NewNop())

	answer, err := service.Answer(context.Background(), "track my order")
	if err != nil {
		t.Fatalf("Retrieval failure should not fail the request: %v", err)
	}

	if answer != "Please contact us directly." {
		t.Errorf("Unexpected answer: %q", answer)
	}
}

func TestAnswerLLMFailure(t *testing.T) {
	mockLLM := llm.NewMockLLM()
	mockLLM.Err = errors.New("model unavailable")

	service := NewAnswerService(mockLLM, &stubRetriever{}, zap.NewNop())

	if _, err := service.Answer(context.Background(), "What services do you offer?"); err == nil {
		t.Error("Expected error when the LLM fails")
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("は", 60)

	got := truncate(long, 50)
	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8 after truncation, got %q", got)
	}

	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("Expected 50 runes, got %d", utf8.RuneCountInString(got))
	}

	if got := truncate("short", 50); got != "short" {
		t.Errorf("Expected short strings unchanged, got %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("FAQ - Q: Returns? A: 30 days", "What is your return policy?")

	if !strings.Contains(prompt, "PRODUCT CONTEXT:\nFAQ - Q: Returns? A: 30 days") {
		t.Error("Expected product context in prompt")
	}

	if !strings.Contains(prompt, "USER QUESTION: What is your return policy?") {
		t.Error("Expected user question in prompt")
	}

	if !strings.HasSuffix(prompt, "ANSWER:") {
		t.Error("Expected prompt to end with ANSWER:")
	}
}
