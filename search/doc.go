// Copyright 2026 Poiesic Systems
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


// Package search provides hybrid retrieval over the audio catalog.
//
// The Planner type runs two sub-index searches for every query:
//   - Lexical ranking of descriptions (BM25)
//   - Semantic ranking via embedding vectors (cosine similarity)
//
// Structured filters (type, tags, duration range) are pushed down into both
// sub-indexes, so a record excluded by a filter never consumes a candidate
// slot. The two ranked lists are fused with reciprocal rank fusion, which
// sidesteps the fact that BM25 and cosine scores live on incomparable
// scales.
package search
