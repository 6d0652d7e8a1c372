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


// Package storage provides the storage abstraction layer for lekodex.
//
// Three repository interfaces split ownership of the persisted record types:
//
//   - CatalogRepository: Product and Document records
//   - FactRepository: ExtractedFact records and the enrichment backlog
//   - VectorRepository: VectorRecord records and similarity search
//
// Every upsert is a single-record, all-or-nothing, wholesale-replace
// operation keyed by product code; calling an upsert twice with identical
// input leaves the store in the same observable state as calling it once.
// No transaction spans more than one product.
//
// Public constructors in implementation packages return these interfaces to
// prevent coupling to backend specifics:
//
//	repo, err := badger.NewCatalogRepository(backend)  // storage.CatalogRepository
//
// Use in tests with in-memory storage:
//
//	catalogRepo, factRepo, vectorRepo, backend, err := badger.NewMemoryRepositories()
//
// All repository implementations must be thread-safe, and all methods accept
// context.Context for cancellation.
package storage
