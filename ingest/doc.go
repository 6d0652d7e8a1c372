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

// Package ingest drives the catalog ingestion pipeline.
//
// The Driver walks the period's product code list in catalog order and
// takes each code through fetch, classification, download, and persistence.
// Every per-product failure is isolated: the driver logs it and moves to
// the next code. The run stops when the configured number of products has
// been stored, when the attempted-codes ceiling is reached, or when the
// context is cancelled — whichever comes first.
package ingest
