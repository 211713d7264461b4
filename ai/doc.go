// Copyright 2025 Poiesic Systems
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


// Package ai provides abstractions for the embedding services used by Nutridex.
//
// The semantic half of query understanding depends on text embeddings: free
// phrases from user queries are matched against a precomputed lexicon of
// nutrient, diet, and allergen phrases by cosine similarity. This package
// defines the Embedder interface that the lexicon builder and the query
// parser depend on, keeping them decoupled from any particular model or
// transport.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE
// to enforce abstraction and allow implementations to be swapped. The test
// constructor (mock.NewMockEmbedder) returns the CONCRETE type so tests can
// inject behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("embeddinggemma"),
//	)
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vec, err := embedder.EmbedText(ctx, "vitamin c")
package ai
