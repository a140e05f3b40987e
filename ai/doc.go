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


// Package ai provides abstractions for AI services used in memlane.
//
// This package defines interfaces for AI operations including text embeddings,
// generative summaries and tag/emotion labelling. It follows the dependency
// inversion principle, allowing the enrichment and search logic to depend on
// abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around four interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Summarizer: Produces a short generative summary
//   - Tagger: Returns a model's raw tag and emotion answer
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Tagger deliberately returns raw text. Validating the answer belongs to the
// enrichment package, which distinguishes an unreachable model from one that
// answered with the wrong shape.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types. Test doubles (mock.NewMockEmbedder, mock.NewMockTagger)
// return CONCRETE types so tests can inject behavior and count calls.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.WithEmbedTextFunc(...)
//	count := mockEmbed.CallCount()
//
// # Live and Heuristic Modes
//
// Config.Live selects whether the external adapter is used at all. It is an
// explicit flag so tests and deployments never depend on the presence of an
// API key in the environment.
package ai
