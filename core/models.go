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


package core

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog passages.
// It is derived from passage content and provenance so re-indexing is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Route is the decision of which evidence source answers a query.
// It is a closed enumeration: only RouteCourse and RouteWeb are valid.
type Route int

const (
	// RouteCourse sends the query to the course catalog knowledge base.
	RouteCourse Route = iota + 1
	// RouteWeb sends the query to open web search.
	RouteWeb
)

// ParseRoute converts a normalized token into a Route.
// The second return value is false for anything other than "course" or "web".
func ParseRoute(token string) (Route, bool) {
	switch token {
	case "course":
		return RouteCourse, true
	case "web":
		return RouteWeb, true
	}
	return 0, false
}

func (r Route) String() string {
	switch r {
	case RouteCourse:
		return "course"
	case RouteWeb:
		return "web"
	}
	return "invalid"
}

// MarshalJSON encodes the route as its token.
func (r Route) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// SourceTool identifies the retrieval stage that produced the evidence.
type SourceTool int

const (
	// SourceCourseDB marks evidence retrieved from the catalog knowledge base.
	SourceCourseDB SourceTool = iota + 1
	// SourceWeb marks evidence retrieved from web search.
	SourceWeb
)

func (s SourceTool) String() string {
	switch s {
	case SourceCourseDB:
		return "course_db"
	case SourceWeb:
		return "web"
	}
	return "none"
}

// MarshalJSON encodes the source tool as its tag.
func (s SourceTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Page is a page number within a catalog document.
// PageUnknown renders as "N/A".
type Page int

// PageUnknown is used when the index carries no page metadata.
const PageUnknown Page = -1

func (p Page) String() string {
	if p < 0 {
		return "N/A"
	}
	return strconv.Itoa(int(p))
}

// MarshalJSON encodes known pages as numbers and unknown pages as null.
func (p Page) MarshalJSON() ([]byte, error) {
	if p < 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(p))), nil
}

const (
	// UnknownSource is the provenance used when a passage has no source document.
	UnknownSource = "unknown"
	// UntitledResult is the title used when a web result has none.
	UntitledResult = "result"
)

// Passage is a stored catalog chunk with its embedding.
type Passage struct {
	Id      ID
	Content string
	Source  string
	Page    Page
	Vector  []float32
}

// ScoredPassage is a passage returned from vector similarity search.
type ScoredPassage struct {
	Passage *Passage
	Score   float32
}

// CatalogPassage is a piece of catalog evidence with its provenance.
type CatalogPassage struct {
	Content string
	Source  string
	Page    Page
}

// WithDefaults returns a copy with missing provenance filled in.
func (p CatalogPassage) WithDefaults() CatalogPassage {
	if p.Source == "" {
		p.Source = UnknownSource
	}
	return p
}

// WebResult is a piece of web evidence with its provenance.
type WebResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// WithDefaults returns a copy with missing provenance filled in.
func (r WebResult) WithDefaults() WebResult {
	if r.Title == "" {
		r.Title = UntitledResult
	}
	return r
}

// Evidence is an ordered, relevance-ranked batch of items from a single source.
// It is sealed: the only implementations are CatalogEvidence and WebEvidence.
type Evidence interface {
	// SourceTool reports which retrieval stage produced the batch.
	SourceTool() SourceTool
	// Len returns the number of items in the batch.
	Len() int

	evidence()
}

// CatalogEvidence is a batch of catalog passages, most relevant first.
type CatalogEvidence []CatalogPassage

func (CatalogEvidence) SourceTool() SourceTool { return SourceCourseDB }
func (e CatalogEvidence) Len() int             { return len(e) }
func (CatalogEvidence) evidence()              {}

// WebEvidence is a batch of web results in provider order.
type WebEvidence []WebResult

func (WebEvidence) SourceTool() SourceTool { return SourceWeb }
func (e WebEvidence) Len() int             { return len(e) }
func (WebEvidence) evidence()              {}

// DocSnippet is the preview of a catalog passage returned to callers.
type DocSnippet struct {
	Source  string `json:"source"`
	Page    Page   `json:"page"`
	Snippet string `json:"snippet"`
}

// ConversationResult is the final output of one pipeline run.
// Docs and WebResults are mutually exclusive, selected by SourceTool.
type ConversationResult struct {
	Query      string       `json:"query"`
	Route      Route        `json:"route"`
	SourceTool SourceTool   `json:"source_tool"`
	Answer     string       `json:"answer"`
	Docs       []DocSnippet `json:"docs,omitempty"`
	WebResults []WebResult  `json:"web_results,omitempty"`
}

// MarshalJSON encodes the preview selected by SourceTool even when it is
// empty, so "docs" is present for every course_db result and
// "web_results" for every web result. The other key is omitted.
func (r ConversationResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Query      string        `json:"query"`
		Route      Route         `json:"route"`
		SourceTool SourceTool    `json:"source_tool"`
		Answer     string        `json:"answer"`
		Docs       *[]DocSnippet `json:"docs,omitempty"`
		WebResults *[]WebResult  `json:"web_results,omitempty"`
	}{
		Query:      r.Query,
		Route:      r.Route,
		SourceTool: r.SourceTool,
		Answer:     r.Answer,
	}

	switch r.SourceTool {
	case SourceCourseDB:
		docs := r.Docs
		if docs == nil {
			docs = []DocSnippet{}
		}
		out.Docs = &docs
	case SourceWeb:
		results := r.WebResults
		if results == nil {
			results = []WebResult{}
		}
		out.WebResults = &results
	}
	return json.Marshal(out)
}
