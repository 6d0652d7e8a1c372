package mock

import (
	"context"
	"strings"

	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/core"
)

// MockFactExtractor is a test double for ai.FactExtractor.
// It allows custom behavior injection via function fields.
type MockFactExtractor struct {
	// ExtractFactsFunc is called by ExtractFacts if set.
	// If nil, uses default simple word extraction.
	ExtractFactsFunc func(ctx context.Context, text, code string) (ai.StructuredFacts, error)

	// Fields is the schema the default behavior fills.
	// Defaults to core.DefaultFactFields.
	Fields []string

	callCount int
}

// NewMockFactExtractor creates a mock fact extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockFactExtractor() *MockFactExtractor {
	return &MockFactExtractor{Fields: core.DefaultFactFields}
}

// ExtractFacts returns simple schema-shaped mock facts.
// Default behavior: the first schema field receives up to three leading
// words of the text; all other fields stay empty.
func (m *MockFactExtractor) ExtractFacts(ctx context.Context, text, code string) (ai.StructuredFacts, error) {
	m.callCount++

	if m.ExtractFactsFunc != nil {
		return m.ExtractFactsFunc(ctx, text, code)
	}

	facts := ai.EmptyFacts(m.Fields)
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 || len(m.Fields) == 0 {
		return facts, nil
	}

	fragments := make([]string, 0, 3)
	for i, word := range words {
		if i >= 3 {
			break
		}
		fragments = append(fragments, word)
	}
	facts.Fields[m.Fields[0]] = fragments

	return facts, nil
}

// CallCount returns the number of times ExtractFacts was called.
func (m *MockFactExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockFactExtractor) Reset() {
	m.callCount = 0
	m.ExtractFactsFunc = nil
}
