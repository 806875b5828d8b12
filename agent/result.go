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


package agent

import (
	"unicode/utf8"

	"github.com/poiesic/intellicourse/core"
)

const (
	// PreviewItems is the number of evidence items kept in a result.
	PreviewItems = 3
	// SnippetLength is the maximum number of characters in a catalog snippet.
	SnippetLength = 300
)

// Project builds the caller-facing result from a finished state. Full
// evidence and routing details are dropped; only a preview of the
// evidence remains.
func Project(state *State) *core.ConversationResult {
	result := &core.ConversationResult{
		Query:      state.Query,
		Route:      state.Decision.Route,
		SourceTool: state.SourceTool(),
		Answer:     state.Answer,
	}

	switch ev := state.Evidence.(type) {
	case core.CatalogEvidence:
		result.Docs = make([]core.DocSnippet, 0, min(len(ev), PreviewItems))
		for _, p := range ev[:min(len(ev), PreviewItems)] {
			p = p.WithDefaults()
			result.Docs = append(result.Docs, core.DocSnippet{
				Source:  p.Source,
				Page:    p.Page,
				Snippet: truncate(p.Content, SnippetLength),
			})
		}
	case core.WebEvidence:
		result.WebResults = append([]core.WebResult{}, ev[:min(len(ev), PreviewItems)]...)
	}

	return result
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
