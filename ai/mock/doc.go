// Package mock provides test double implementations of the embedding interface.
//
// The mock embedder allows tests to run without an external embedding
// service and produces deterministic vectors, so similarity comparisons
// are stable across runs.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vec, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
