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


package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/intellicourse/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 900
	// DefaultChunkOverlap is the overlap between consecutive chunks.
	DefaultChunkOverlap = 150
)

// DefaultSeparators are tried in order when splitting.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is a piece of a Document ready to embed.
type Chunk struct {
	Content string
	Source  string
	Page    core.Page
}

// Splitter breaks documents into overlapping chunks.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

// NewSplitter creates a recursive character splitter.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be greater than zero", ErrInvalidChunking)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunking, overlap, size)
	}
	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(DefaultSeparators),
		),
	}, nil
}

// Split returns the chunks of docs in document order. Chunks keep their
// document's provenance. Blank chunks are dropped.
func (s *Splitter) Split(docs []Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		segments, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s p.%s: %w", doc.Source, doc.Page, err)
		}
		for _, segment := range segments {
			text := strings.TrimSpace(segment)
			if text == "" {
				continue
			}
			chunks = append(chunks, Chunk{Content: text, Source: doc.Source, Page: doc.Page})
		}
	}
	return chunks, nil
}
