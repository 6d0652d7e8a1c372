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

// Package openai implements the ai service interfaces against
// OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The fact extractor sends one JSON-mode completion request per document
// carrying the Czech extraction instruction, the field schema, and a
// bounded prefix of the document text. The embedder wraps langchaingo's
// embedding client. Both are constructed through Provider, which shares
// one configuration across services.
package openai
