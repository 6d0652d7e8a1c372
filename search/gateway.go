// Copyright 2025 Lekodex Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/index"
	"github.com/lekodex/lekodex/storage"
)

// LexicalResultCap bounds the number of results a lexical search returns.
const LexicalResultCap = 20

// Gateway answers catalog queries over stored products, extracted facts
// and their embedding vectors.
type Gateway struct {
	catalog  storage.CatalogRepository
	facts    storage.FactRepository
	vectors  storage.VectorRepository
	embedder ai.Embedder
	schema   []string
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithLogger sets a custom logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger.With("component", "search")
		return nil
	}
}

// WithSchema sets the fact fields searched and reported by the gateway.
func WithSchema(fields []string) Option {
	return func(g *Gateway) error {
		if len(fields) > 0 {
			g.schema = fields
		}
		return nil
	}
}

// NewGateway creates a search gateway over the given repositories. The
// embedder is used to vectorize queries for the semantic surfaces.
func NewGateway(catalog storage.CatalogRepository, facts storage.FactRepository, vectors storage.VectorRepository, embedder ai.Embedder, opts ...Option) (*Gateway, error) {
	if catalog == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Gateway{
		catalog:  catalog,
		facts:    facts,
		vectors:  vectors,
		embedder: embedder,
		schema:   core.DefaultFactFields,
		logger:   slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// SearchLexical finds products whose name or extracted fact text contains
// the query as a case-insensitive substring. Results come back in catalog
// key order, at most LexicalResultCap of them. An empty query matches
// nothing.
func (g *Gateway) SearchLexical(ctx context.Context, query string) ([]*core.ProductMatch, error) {
	if query == "" {
		return []*core.ProductMatch{}, nil
	}

	products, err := g.catalog.ListProducts(ctx)
	if err != nil {
		g.logger.Error("error listing products for lexical search", "err", err)
		return nil, err
	}

	results := make([]*core.ProductMatch, 0, LexicalResultCap)
	for _, product := range products {
		if len(results) >= LexicalResultCap {
			break
		}

		fact, err := g.lookupFacts(ctx, product.Code)
		if err != nil {
			return nil, err
		}

		hit := containsFold(product.Name, query)
		if !hit && fact != nil {
			hit = containsFold(factText(fact.Fields, g.schema), query)
		}
		if !hit {
			continue
		}

		results = append(results, g.buildMatch(product.Code, product.Name, fact, 0))
	}

	return results, nil
}

// SearchByField is a lexical search restricted to a single fact field.
// Product names are not consulted; only products whose extracted text for
// the given field contains the query match.
func (g *Gateway) SearchByField(ctx context.Context, field, query string) ([]*core.ProductMatch, error) {
	if query == "" || field == "" {
		return []*core.ProductMatch{}, nil
	}

	facts, err := g.facts.ListFacts(ctx)
	if err != nil {
		g.logger.Error("error listing facts for field search", "field", field, "err", err)
		return nil, err
	}

	results := make([]*core.ProductMatch, 0, LexicalResultCap)
	for _, fact := range facts {
		if len(results) >= LexicalResultCap {
			break
		}
		if !containsFold(fact.FieldText(field), query) {
			continue
		}

		name := g.lookupName(ctx, fact.Code)
		results = append(results, g.buildMatch(fact.Code, name, fact, 0))
	}

	return results, nil
}

// SearchSemantic embeds the query and ranks indexed products by cosine
// similarity of their combined fact vector, descending.
func (g *Gateway) SearchSemantic(ctx context.Context, query string, limit int) ([]*core.ProductMatch, error) {
	return g.searchVector(ctx, query, "", limit)
}

// SearchBySymptoms embeds the symptom description and ranks indexed
// products by cosine similarity of their indication vector alone, so
// dosage and interaction text cannot dilute the match.
func (g *Gateway) SearchBySymptoms(ctx context.Context, symptoms string, limit int) ([]*core.ProductMatch, error) {
	return g.searchVector(ctx, symptoms, core.FieldIndications, limit)
}

func (g *Gateway) searchVector(ctx context.Context, query, field string, limit int) ([]*core.ProductMatch, error) {
	if query == "" {
		return []*core.ProductMatch{}, nil
	}
	if limit <= 0 {
		limit = LexicalResultCap
	}

	vector, err := g.embedder.EmbedText(ctx, query)
	if err != nil {
		g.logger.Error("error embedding query", "err", err)
		return nil, err
	}
	vector = index.NormalizeVector(vector)

	matches, err := g.vectors.FindSimilar(ctx, field, vector, limit)
	if err != nil {
		g.logger.Error("error running similarity search", "field", field, "err", err)
		return nil, err
	}

	results := make([]*core.ProductMatch, 0, len(matches))
	for _, match := range matches {
		fact, err := g.lookupFacts(ctx, match.Code)
		if err != nil {
			return nil, err
		}
		name := g.lookupName(ctx, match.Code)
		results = append(results, g.buildMatch(match.Code, name, fact, match.Score))
	}

	return results, nil
}

// lookupFacts fetches the fact record for a code, treating a missing
// record as nil rather than an error.
func (g *Gateway) lookupFacts(ctx context.Context, code string) (*core.ExtractedFact, error) {
	fact, err := g.facts.GetFacts(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		g.logger.Error("error retrieving facts", "code", code, "err", err)
		return nil, err
	}
	return fact, nil
}

// lookupName resolves a product name; a missing catalog record yields an
// empty name, not a failed search.
func (g *Gateway) lookupName(ctx context.Context, code string) string {
	product, err := g.catalog.GetProduct(ctx, code)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Warn("failed to resolve product name", "code", code, "err", err)
		}
		return ""
	}
	return product.Name
}

func (g *Gateway) buildMatch(code, name string, fact *core.ExtractedFact, score float32) *core.ProductMatch {
	match := &core.ProductMatch{
		Code:       code,
		Name:       name,
		Similarity: score,
	}
	if fact != nil {
		match.Fields = fact.Fields
	}
	return match
}
