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
	"errors"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{name: "valid query", query: "What are the prerequisites for CS101?", wantErr: nil},
		{name: "empty query", query: "", wantErr: ErrEmptyQuery},
		{name: "whitespace query", query: " \n\t ", wantErr: ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassage(t *testing.T) {
	tests := []struct {
		name    string
		passage *Passage
		wantErr error
	}{
		{
			name:    "valid passage",
			passage: &Passage{Content: "Intro to programming", Vector: []float32{0.1}},
			wantErr: nil,
		},
		{
			name:    "valid passage without provenance",
			passage: &Passage{Content: "x", Page: PageUnknown, Vector: []float32{1}},
			wantErr: nil,
		},
		{
			name:    "nil passage",
			passage: nil,
			wantErr: ErrInvalidPassage,
		},
		{
			name:    "empty content",
			passage: &Passage{Content: "  ", Vector: []float32{0.1}},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "missing vector",
			passage: &Passage{Content: "x"},
			wantErr: ErrMissingVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassage(tt.passage)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePassage() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPassage) {
				t.Errorf("ValidatePassage() error should wrap ErrInvalidPassage, got %v", err)
			}
		})
	}
}

func TestPassageID(t *testing.T) {
	a := PassageID("CS101.pdf", 3, "Intro")
	b := PassageID("CS101.pdf", 3, "Intro")
	c := PassageID("CS101.pdf", 4, "Intro")

	if a != b {
		t.Error("PassageID should be deterministic")
	}
	if a == c {
		t.Error("PassageID should differ by page")
	}
}
