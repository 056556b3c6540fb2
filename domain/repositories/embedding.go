package repositories

import "context"

// Embedder produces vector embeddings for text
type Embedder interface {
	// Embed returns a vector embedding for the given text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds catalog chunks relevant to a query
type Retriever interface {
	// Search returns up to k chunks ranked by relevance to the query
	Search(ctx context.Context, query string, k int) ([]string, error)
}
