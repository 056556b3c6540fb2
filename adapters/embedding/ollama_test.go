package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestOllamaEmbedder_Embed(t *testing.T) {
	var gotModel, gotPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("Expected path /api/embeddings, got %s", r.URL.Path)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		gotModel = req.Model
		gotPrompt = req.Prompt

		json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Model: "all-minilm"}, zaptest.NewLogger(t))

	vector, err := embedder.Embed(context.Background(), "What is your return policy?")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vector) != 3 {
		t.Errorf("Expected 3-dimensional vector, got %d", len(vector))
	}

	if gotModel != "all-minilm" {
		t.Errorf("Expected model all-minilm, got %s", gotModel)
	}

	if gotPrompt != "What is your return policy?" {
		t.Errorf("Expected prompt to carry the text, got %q", gotPrompt)
	}
}

func TestOllamaEmbedder_EmbedEmptyText(t *testing.T) {
	embedder := NewOllamaEmbedder(OllamaConfig{}, zaptest.NewLogger(t))

	if _, err := embedder.Embed(context.Background(), "   "); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestOllamaEmbedder_EmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL}, zaptest.NewLogger(t))

	if _, err := embedder.Embed(context.Background(), "hello"); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestOllamaEmbedder_Defaults(t *testing.T) {
	embedder := NewOllamaEmbedder(OllamaConfig{}, zaptest.NewLogger(t))

	if embedder.baseURL != defaultBaseURL {
		t.Errorf("Expected default base URL %s, got %s", defaultBaseURL, embedder.baseURL)
	}

	if embedder.model != defaultModel {
		t.Errorf("Expected default model %s, got %s", defaultModel, embedder.model)
	}
}
