package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/emergingssoftware/faqbot/domain/repositories"
)

// mockDimension keeps mock vectors small but collision-resistant enough
// for catalog-sized corpora.
const mockDimension = 256

// MockEmbedder is a deterministic, dependency-free embedder used in tests
// and when no Ollama server is available. It hashes tokens into a fixed
// number of buckets, so texts sharing words land near each other.
type MockEmbedder struct{}

// Ensure MockEmbedder implements the Embedder interface
var _ repositories.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// Embed produces a deterministic token-bucket vector for the text
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, mockDimension)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?:;\"'()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%mockDimension]++
	}

	return vector, nil
}
