package ai

import "context"

// Embedder produces vector embeddings for query tokens and lexicon
// phrases. Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds a single string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of strings, returning vectors in input
	// order. Batching is considerably cheaper than repeated EmbedText
	// calls against a remote service.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
