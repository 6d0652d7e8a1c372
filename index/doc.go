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

// Package index maintains the embedding vector index over fact records.
//
// The Indexer computes one vector per indexed field group plus a combined
// vector over all fact text, normalized to unit length for cosine
// similarity. BatchReindex processes every fact record that has no vector
// record yet, using a worker pool; vectors are otherwise never recomputed
// automatically, so a changed fact keeps its old vectors until the next
// explicit reindex.
package index
