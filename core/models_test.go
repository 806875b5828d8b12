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
	"encoding/json"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "simple content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}

	if IDFromContent("a") == IDFromContent("b") {
		t.Error("IDFromContent() produced the same ID for different content")
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		token  string
		want   Route
		wantOK bool
	}{
		{token: "course", want: RouteCourse, wantOK: true},
		{token: "web", want: RouteWeb, wantOK: true},
		{token: "Course", wantOK: false},
		{token: " web", wantOK: false},
		{token: "", wantOK: false},
		{token: "catalog", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseRoute(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("ParseRoute(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRoute(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestRouteAndSourceStrings(t *testing.T) {
	if RouteCourse.String() != "course" || RouteWeb.String() != "web" {
		t.Errorf("unexpected route strings: %s, %s", RouteCourse, RouteWeb)
	}
	if SourceCourseDB.String() != "course_db" || SourceWeb.String() != "web" {
		t.Errorf("unexpected source strings: %s, %s", SourceCourseDB, SourceWeb)
	}
}

func TestPage(t *testing.T) {
	if got := Page(3).String(); got != "3" {
		t.Errorf("Page(3).String() = %q", got)
	}
	if got := PageUnknown.String(); got != "N/A" {
		t.Errorf("PageUnknown.String() = %q", got)
	}

	data, err := json.Marshal(DocSnippet{Source: "CS101.pdf", Page: PageUnknown, Snippet: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"source":"CS101.pdf","page":null,"snippet":"x"}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestEvidenceVariants(t *testing.T) {
	var catalog Evidence = CatalogEvidence{{Content: "a"}, {Content: "b"}}
	var web Evidence = WebEvidence{{Title: "t"}}

	if catalog.SourceTool() != SourceCourseDB || catalog.Len() != 2 {
		t.Errorf("catalog evidence reported %s/%d", catalog.SourceTool(), catalog.Len())
	}
	if web.SourceTool() != SourceWeb || web.Len() != 1 {
		t.Errorf("web evidence reported %s/%d", web.SourceTool(), web.Len())
	}
}

func TestWithDefaults(t *testing.T) {
	p := CatalogPassage{Content: "x", Page: PageUnknown}.WithDefaults()
	if p.Source != UnknownSource {
		t.Errorf("expected default source, got %q", p.Source)
	}

	r := WebResult{URL: "https://example.com"}.WithDefaults()
	if r.Title != UntitledResult {
		t.Errorf("expected default title, got %q", r.Title)
	}
}

func TestConversationResultJSON(t *testing.T) {
	result := ConversationResult{
		Query:      "q",
		Route:      RouteWeb,
		SourceTool: SourceWeb,
		Answer:     "a",
		WebResults: []WebResult{{Title: "t", URL: "u", Content: "c"}},
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["route"] != "web" || decoded["source_tool"] != "web" {
		t.Errorf("unexpected enum encoding: %v", decoded)
	}
	if _, ok := decoded["docs"]; ok {
		t.Error("docs should be omitted for web results")
	}
}

func TestConversationResultJSON_EmptyPreview(t *testing.T) {
	tests := []struct {
		name    string
		result  ConversationResult
		present string
		absent  string
	}{
		{
			name:    "course without passages keeps docs",
			result:  ConversationResult{Query: "q", Route: RouteCourse, SourceTool: SourceCourseDB, Answer: "a"},
			present: "docs",
			absent:  "web_results",
		},
		{
			name:    "web without results keeps web_results",
			result:  ConversationResult{Query: "q", Route: RouteWeb, SourceTool: SourceWeb, Answer: "a"},
			present: "web_results",
			absent:  "docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatal(err)
			}

			var decoded map[string]json.RawMessage
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatal(err)
			}
			if got, ok := decoded[tt.present]; !ok || string(got) != "[]" {
				t.Errorf("expected %q to be an empty list, got %s", tt.present, data)
			}
			if _, ok := decoded[tt.absent]; ok {
				t.Errorf("expected %q to be omitted, got %s", tt.absent, data)
			}
		})
	}
}
