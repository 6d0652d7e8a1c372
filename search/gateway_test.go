package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/lekodex/lekodex/ai/mock"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/index"
	"github.com/lekodex/lekodex/storage"
	"github.com/lekodex/lekodex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepos(t *testing.T) (storage.CatalogRepository, storage.FactRepository, storage.VectorRepository) {
	t.Helper()
	catalog, facts, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectors.Close()
		facts.Close()
		catalog.Close()
		backend.Close()
	})
	return catalog, facts, vectors
}

func seedProduct(t *testing.T, catalog storage.CatalogRepository, code, name string) {
	t.Helper()
	err := catalog.UpsertProduct(context.Background(), &core.Product{Code: code, Name: name})
	require.NoError(t, err)
}

func seedFacts(t *testing.T, facts storage.FactRepository, code string, fields map[string][]string) *core.ExtractedFact {
	t.Helper()
	fact := core.NewExtractedFact(code, core.DefaultFactFields)
	for field, fragments := range fields {
		fact.Fields[field] = fragments
	}
	err := facts.UpsertFacts(context.Background(), fact)
	require.NoError(t, err)
	return fact
}

// seedVectors indexes a fact the same way the batch indexer does: one
// normalized deterministic vector per indexed field plus the combined text.
func seedVectors(t *testing.T, vectors storage.VectorRepository, embedder *mock.MockEmbedder, fact *core.ExtractedFact) {
	t.Helper()
	ctx := context.Background()
	record := &core.VectorRecord{
		Code:         fact.Code,
		FieldVectors: make(map[string][]float32),
	}
	for _, field := range core.DefaultIndexedFields {
		text := fact.FieldText(field)
		if text == "" {
			continue
		}
		vec, err := embedder.EmbedText(ctx, text)
		require.NoError(t, err)
		record.FieldVectors[field] = index.NormalizeVector(vec)
	}
	combined, err := embedder.EmbedText(ctx, fact.CombinedText(core.DefaultFactFields))
	require.NoError(t, err)
	record.Combined = index.NormalizeVector(combined)
	require.NoError(t, vectors.UpsertVectors(ctx, record))
}

func TestNewGateway(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		gateway, err := NewGateway(catalog, facts, vectors, embedder)
		require.NoError(t, err)
		assert.NotNil(t, gateway)
	})

	t.Run("nil catalog repository", func(t *testing.T) {
		_, err := NewGateway(nil, facts, vectors, embedder)
		assert.Equal(t, ErrCatalogRepositoryRequired, err)
	})

	t.Run("nil fact repository", func(t *testing.T) {
		_, err := NewGateway(catalog, nil, vectors, embedder)
		assert.Equal(t, ErrFactRepositoryRequired, err)
	})

	t.Run("nil vector repository", func(t *testing.T) {
		_, err := NewGateway(catalog, facts, nil, embedder)
		assert.Equal(t, ErrVectorRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewGateway(catalog, facts, vectors, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearchLexical(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	seedProduct(t, catalog, "0094648", "PARALEN 500")
	seedProduct(t, catalog, "0254045", "IBALGIN 400")
	seedFacts(t, facts, "0254045", map[string][]string{
		core.FieldIndications: {"bolest hlavy", "horečka"},
	})

	gateway, err := NewGateway(catalog, facts, vectors, mock.NewMockEmbedder())
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("matches product name case-insensitively", func(t *testing.T) {
		results, err := gateway.SearchLexical(ctx, "paralen")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "0094648", results[0].Code)
		assert.Equal(t, "PARALEN 500", results[0].Name)
		assert.Zero(t, results[0].Similarity)
	})

	t.Run("matches extracted fact text", func(t *testing.T) {
		results, err := gateway.SearchLexical(ctx, "Bolest")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "0254045", results[0].Code)
		assert.Equal(t, []string{"bolest hlavy", "horečka"}, results[0].Fields[core.FieldIndications])
	})

	t.Run("no match yields empty results", func(t *testing.T) {
		results, err := gateway.SearchLexical(ctx, "warfarin")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		results, err := gateway.SearchLexical(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchLexicalResultCap(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	for i := 0; i < LexicalResultCap+5; i++ {
		seedProduct(t, catalog, fmt.Sprintf("%07d", i), fmt.Sprintf("PARALEN %d", i))
	}

	gateway, err := NewGateway(catalog, facts, vectors, mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := gateway.SearchLexical(context.Background(), "paralen")
	require.NoError(t, err)
	assert.Len(t, results, LexicalResultCap)
}

func TestSearchByField(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	seedProduct(t, catalog, "0094648", "PARALEN 500")
	seedFacts(t, facts, "0094648", map[string][]string{
		core.FieldIndications: {"bolest zad"},
		core.FieldDosage:      {"3x denně"},
	})

	gateway, err := NewGateway(catalog, facts, vectors, mock.NewMockEmbedder())
	require.NoError(t, err)

	ctx := context.Background()

	results, err := gateway.SearchByField(ctx, core.FieldIndications, "bolest")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "0094648", results[0].Code)
	assert.Equal(t, "PARALEN 500", results[0].Name)

	// The query only matches the indication text, so a dosage-restricted
	// search must come back empty.
	results, err = gateway.SearchByField(ctx, core.FieldDosage, "bolest")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSemanticOrdering(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	embedder := mock.NewMockEmbedder()

	texts := map[string]string{
		"0000001": "bolest hlavy a migréna",
		"0000002": "vysoký krevní tlak",
		"0000003": "zažívací obtíže",
	}
	for code, text := range texts {
		seedProduct(t, catalog, code, "PRODUCT-"+code)
		fact := seedFacts(t, facts, code, map[string][]string{
			core.FieldIndications: {text},
		})
		seedVectors(t, vectors, embedder, fact)
	}

	gateway, err := NewGateway(catalog, facts, vectors, embedder)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := gateway.SearchSemantic(ctx, texts["0000001"], 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The product whose combined text equals the query embeds to the same
	// vector and must rank first with similarity ~1.
	assert.Equal(t, "0000001", results[0].Code)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
	assert.Equal(t, "PRODUCT-0000001", results[0].Name)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity,
			"similarity scores must be non-increasing")
	}

	limited, err := gateway.SearchSemantic(ctx, texts["0000001"], 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSearchSemanticEmptyIndex(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	gateway, err := NewGateway(catalog, facts, vectors, mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := gateway.SearchSemantic(context.Background(), "bolest", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchBySymptomsUsesIndicationVector(t *testing.T) {
	catalog, facts, vectors := testRepos(t)
	embedder := mock.NewMockEmbedder()

	// One product with an indication vector, one with dosage text only.
	seedProduct(t, catalog, "0000001", "PRODUCT-0000001")
	withIndication := seedFacts(t, facts, "0000001", map[string][]string{
		core.FieldIndications: {"bolest kloubů"},
	})
	seedVectors(t, vectors, embedder, withIndication)

	seedProduct(t, catalog, "0000002", "PRODUCT-0000002")
	dosageOnly := seedFacts(t, facts, "0000002", map[string][]string{
		core.FieldDosage: {"1 tableta denně"},
	})
	seedVectors(t, vectors, embedder, dosageOnly)

	gateway, err := NewGateway(catalog, facts, vectors, embedder)
	require.NoError(t, err)

	results, err := gateway.SearchBySymptoms(context.Background(), "bolest kloubů", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "0000001", results[0].Code)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
}
