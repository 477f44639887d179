// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder implements ai.Embedder for use in unit tests. It lets tests
// run without an embedding service and gives controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder returns unit-length vectors derived from an FNV hash of the
// text, so identical texts always embed identically. DeterministicVector is
// exported for tests that need to build matching query vectors by hand.
package mock
