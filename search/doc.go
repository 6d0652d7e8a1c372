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


// Package search provides lexical and semantic retrieval over the
// product catalog and its extracted facts.
//
// The Gateway type exposes three query surfaces:
//   - Lexical search: case-insensitive substring matching over product
//     names and extracted fact text
//   - Semantic search: cosine similarity against the combined fact vector
//   - Symptom search: cosine similarity restricted to the indication vector
//
// Semantic results reflect the vectors as of the last reindex; facts
// changed since then match on their stored vectors, not their current text.
package search
