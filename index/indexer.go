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

package index

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage"
)

// Indexer computes and stores embedding vectors for fact records.
type Indexer struct {
	facts    storage.FactRepository
	vectors  storage.VectorRepository
	embedder ai.Embedder

	schema         []string
	indexedFields  []string
	poolSize       int
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithSchema sets the full field schema the combined vector is computed
// over. Default is core.DefaultFactFields.
func WithSchema(fields []string) Option {
	return func(ix *Indexer) {
		ix.schema = fields
	}
}

// WithIndexedFields sets the field groups that get their own vector in
// addition to the combined one. Default is core.DefaultIndexedFields.
func WithIndexedFields(fields []string) Option {
	return func(ix *Indexer) {
		ix.indexedFields = fields
	}
}

// WithPoolSize sets the worker pool size for batch reindexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) {
		if size < 1 {
			size = 1
		}
		ix.poolSize = size
	}
}

// WithProgressWriter sets where batch progress is reported.
// Default is io.Discard.
func WithProgressWriter(w io.Writer) Option {
	return func(ix *Indexer) {
		if w == nil {
			w = io.Discard
		}
		ix.progress = w
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
	}
}

// NewIndexer creates an embedding indexer.
func NewIndexer(facts storage.FactRepository, vectors storage.VectorRepository, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if facts == nil {
		return nil, ErrFactRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	ix := &Indexer{
		facts:          facts,
		vectors:        vectors,
		embedder:       embedder,
		schema:         core.DefaultFactFields,
		indexedFields:  core.DefaultIndexedFields,
		poolSize:       poolSize,
		progress:       io.Discard,
		reportInterval: 10,
		logger:         slog.Default().With("component", "index"),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix, nil
}

// IndexProduct computes per-field and combined vectors for one fact record
// and upserts them keyed by its code. A fact with no combined text is a
// no-op: the indexer reports skipped, not failure.
func (ix *Indexer) IndexProduct(ctx context.Context, fact *core.ExtractedFact) (skipped bool, err error) {
	combined := fact.CombinedText(ix.schema)
	if combined == "" {
		ix.logger.Debug("no fact text to index", "code", fact.Code)
		return true, nil
	}

	record := &core.VectorRecord{
		Code:         fact.Code,
		FieldVectors: make(map[string][]float32, len(ix.indexedFields)),
	}

	for _, field := range ix.indexedFields {
		text := fact.FieldText(field)
		if text == "" {
			continue
		}

		vector, err := ix.embedder.EmbedText(ctx, text)
		if err != nil {
			return false, err
		}
		record.FieldVectors[field] = NormalizeVector(vector)
	}

	vector, err := ix.embedder.EmbedText(ctx, combined)
	if err != nil {
		return false, err
	}
	record.Combined = NormalizeVector(vector)

	if err := ix.vectors.UpsertVectors(ctx, record); err != nil {
		return false, err
	}

	ix.logger.Debug("indexed product", "code", fact.Code, "fields", len(record.FieldVectors))
	return false, nil
}

// BatchReindex indexes every fact record that has no vector record yet,
// using the configured worker pool. Per-product failures are logged and
// skipped. Returns the number of products indexed.
func (ix *Indexer) BatchReindex(ctx context.Context) (int, error) {
	missing, err := ix.vectors.ListMissing(ctx)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		ix.logger.Info("vector index is complete, nothing to do")
		return 0, nil
	}

	ix.logger.Info("starting batch reindex", "missing", len(missing), "workers", ix.poolSize)

	pool, err := ants.NewPool(ix.poolSize)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(ix.progress, len(missing), ix.reportInterval)
	tracker.Start()

	var indexed atomic.Int64
	var wg sync.WaitGroup

	for _, code := range missing {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer tracker.Increment(1)

			fact, err := ix.facts.GetFacts(ctx, code)
			if err != nil {
				ix.logger.Warn("failed to load facts for indexing", "code", code, "err", err)
				return
			}

			skipped, err := ix.IndexProduct(ctx, fact)
			if err != nil {
				ix.logger.Warn("failed to index product", "code", code, "err", err)
				return
			}
			if !skipped {
				indexed.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			ix.logger.Warn("failed to submit index task", "code", code, "err", submitErr)
		}
	}

	wg.Wait()
	tracker.Finish()

	ix.logger.Info("batch reindex finished",
		"indexed", indexed.Load(),
		"missing", len(missing),
		"elapsed", tracker.Elapsed().String())
	return int(indexed.Load()), ctx.Err()
}
