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

package enrich

import (
	"context"
	"log/slog"

	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/doctext"
	"github.com/lekodex/lekodex/storage"
)

// Pipeline processes the unprocessed-document backlog into fact records.
type Pipeline struct {
	facts     storage.FactRepository
	extractor ai.FactExtractor
	docType   string
	schema    []string
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDocumentType sets the document type read from the backlog.
// Default is "spc".
func WithDocumentType(docType string) Option {
	return func(p *Pipeline) {
		p.docType = docType
	}
}

// WithSchema sets the fact field schema used for stored records.
// Default is core.DefaultFactFields.
func WithSchema(fields []string) Option {
	return func(p *Pipeline) {
		p.schema = fields
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates a fact extraction pipeline.
func NewPipeline(facts storage.FactRepository, extractor ai.FactExtractor, opts ...Option) (*Pipeline, error) {
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrFactExtractorRequired
	}

	p := &Pipeline{
		facts:     facts,
		extractor: extractor,
		docType:   "spc",
		schema:    core.DefaultFactFields,
		logger:    slog.Default().With("component", "enrich"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Run processes every backlog document once. Per-document failures are
// logged and skipped; the document stays in the backlog for the next run.
// Returns the number of fact records written.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	pending, err := p.facts.SelectUnprocessed(ctx, p.docType)
	if err != nil {
		return 0, err
	}

	p.logger.Info("starting fact extraction", "backlog", len(pending))

	processed := 0
	for i, doc := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		p.logger.Info("extracting facts",
			"code", doc.Code,
			"name", doc.Name,
			"progress", i+1,
			"total", len(pending))

		if err := p.processDocument(ctx, doc); err != nil {
			p.logger.Warn("skipping document", "code", doc.Code, "err", err)
			continue
		}
		processed++
	}

	p.logger.Info("fact extraction finished", "processed", processed, "backlog", len(pending))
	return processed, nil
}

func (p *Pipeline) processDocument(ctx context.Context, doc *core.PendingDocument) error {
	text, err := doctext.ForContent(doc.Data).ExtractText(ctx, doc.Data)
	if err != nil {
		return err
	}

	// Empty facts are stored too, whether from a text-less document or a
	// soft parse failure: the record marks the document processed, and
	// re-extraction is an explicit re-run decision, not an automatic retry.
	fact := core.NewExtractedFact(doc.Code, p.schema)
	if text == "" {
		p.logger.Warn("document carried no extractable text", "code", doc.Code)
		return p.facts.UpsertFacts(ctx, fact)
	}

	extracted, err := p.extractor.ExtractFacts(ctx, text, doc.Code)
	if err != nil {
		return err
	}

	for field, fragments := range extracted.Fields {
		fact.Fields[field] = fragments
	}
	fact.SourceText = text

	return p.facts.UpsertFacts(ctx, fact)
}
