// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.FactExtractor,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockExtractor := mock.NewMockFactExtractor()
//	mockExtractor.ExtractFactsFunc = func(ctx context.Context, text, code string) (ai.StructuredFacts, error) {
//	    facts := ai.EmptyFacts(core.DefaultFactFields)
//	    facts.Fields["indikace"] = []string{"bolest"}
//	    return facts, nil
//	}
//
//	// Check call counts
//	count := mockExtractor.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockFactExtractor: Fills the first schema field with the text's leading words
//   - MockProvider: Aggregates mock embedder and extractor
package mock
