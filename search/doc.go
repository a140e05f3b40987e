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

// Package search finds a user's captured items by text, emotion and tag meaning.
//
// The Searcher always applies a case-insensitive substring match over title,
// summary and tags. When semantic search is requested it first asks the
// Matcher for tags whose embeddings are close to the query; any such tags
// broaden the match with an exact tag disjunction. The Matcher fails closed:
// if embeddings are unavailable the search quietly stays literal, and
// SearchResponse.SemanticUsed reports whether broadening actually happened.
//
// Tag embeddings are held per user in an EmbeddingCache. A snapshot is built
// on first use with a single vocabulary load and a single batch embedding
// call, and is discarded by Invalidate whenever the user's items change.
package search
