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


package lekodex

import (
	"log/slog"

	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/ai/openai"
	"github.com/lekodex/lekodex/enrich"
	"github.com/lekodex/lekodex/index"
	"github.com/lekodex/lekodex/ingest"
	"github.com/lekodex/lekodex/registry"
	"github.com/lekodex/lekodex/search"
	"github.com/lekodex/lekodex/storage"
	"github.com/lekodex/lekodex/storage/badger"
)

// Database bundles the storage backend, its repositories and the AI
// provider, and hands out the pipeline stages wired to them.
type Database struct {
	backend     *badger.Backend
	catalogRepo storage.CatalogRepository
	factRepo    storage.FactRepository
	vectorRepo  storage.VectorRepository
	provider    ai.AIProvider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}
	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create catalog repository
	catalogRepo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create fact repository
	factRepo, err := badger.NewFactRepository(backend)
	if err != nil {
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create vector repository
	vectorRepo, err := badger.NewVectorRepository(backend)
	if err != nil {
		factRepo.Close()
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		vectorRepo.Close()
		factRepo.Close()
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		catalogRepo: catalogRepo,
		factRepo:    factRepo,
		vectorRepo:  vectorRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.vectorRepo.Close(); err != nil {
		db.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := db.factRepo.Close(); err != nil {
		db.logger.Error("error closing fact repository", "err", err)
		return err
	}
	if err := db.catalogRepo.Close(); err != nil {
		db.logger.Error("error closing catalog repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CatalogRepository() storage.CatalogRepository {
	return db.catalogRepo
}

func (db *Database) FactRepository() storage.FactRepository {
	return db.factRepo
}

func (db *Database) VectorRepository() storage.VectorRepository {
	return db.vectorRepo
}

func (db *Database) NewIngestDriver(client *registry.Client, opts ...ingest.Option) (*ingest.Driver, error) {
	return ingest.NewDriver(client, db.catalogRepo, opts...)
}

func (db *Database) NewEnrichPipeline(opts ...enrich.Option) (*enrich.Pipeline, error) {
	return enrich.NewPipeline(db.factRepo, db.provider.FactExtractor(), opts...)
}

func (db *Database) NewIndexer(opts ...index.Option) (*index.Indexer, error) {
	return index.NewIndexer(db.factRepo, db.vectorRepo, db.provider.Embedder(), opts...)
}

func (db *Database) NewGateway(opts ...search.Option) (*search.Gateway, error) {
	return search.NewGateway(db.catalogRepo, db.factRepo, db.vectorRepo, db.provider.Embedder(), opts...)
}
