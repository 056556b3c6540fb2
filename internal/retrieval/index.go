// Package retrieval provides an in-memory vector index over catalog chunks.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/domain/repositories"
)

// DefaultTopK is how many chunks are retrieved per query
const DefaultTopK = 5

// Index embeds catalog chunks once at startup and answers similarity
// queries against them.
type Index struct {
	embedder repositories.Embedder
	logger   *zap.Logger

	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	text   string
	vector []float32
}

// Ensure Index implements the Retriever interface
var _ repositories.Retriever = (*Index)(nil)

// NewIndex creates an empty index backed by the given embedder
func NewIndex(embedder repositories.Embedder, logger *zap.Logger) *Index {
	return &Index{
		embedder: embedder,
		logger:   logger,
	}
}

// Add embeds each chunk and stores it in the index
func (idx *Index) Add(ctx context.Context, chunks []string) error {
	for _, chunk := range chunks {
		vector, err := idx.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk: %w", err)
		}

		idx.mu.Lock()
		idx.entries = append(idx.entries, entry{text: chunk, vector: vector})
		idx.mu.Unlock()
	}

	idx.logger.Info("Indexed catalog chunks", zap.Int("count", len(chunks)))
	return nil
}

// Len returns the number of indexed chunks
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Search embeds the query and returns up to k chunks ranked by cosine
// similarity, most similar first.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryVector, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		text  string
		score float64
	}

	results := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		results = append(results, scored{text: e.text, score: cosineSimilarity(queryVector, e.vector)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}

	chunks := make([]string, 0, k)
	for _, r := range results[:k] {
		chunks = append(chunks, r.text)
	}

	return chunks, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
