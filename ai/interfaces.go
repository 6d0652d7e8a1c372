package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FactExtractor extracts schema-shaped clinical facts from document text.
// Implementations must be thread-safe for concurrent use.
type FactExtractor interface {
	// ExtractFacts analyzes document text for the given product code and
	// fills the configured field schema with short text fragments.
	// A malformed model response yields empty facts, not an error; only
	// transport failures are reported as errors.
	ExtractFacts(ctx context.Context, text, code string) (StructuredFacts, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and FactExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// FactExtractor returns the fact extraction service.
	// The returned FactExtractor is safe for concurrent use.
	FactExtractor() FactExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
