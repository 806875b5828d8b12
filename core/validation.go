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
	"fmt"
	"strings"
)

// ValidateQuery rejects queries that are empty after trimming whitespace.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidatePassage validates a Passage before it is stored.
//
// Validation rules:
//   - Content must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - Source and Page (defaulted at retrieval time)
//   - ID (assigned from content when zero)
func ValidatePassage(passage *Passage) error {
	if passage == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if strings.TrimSpace(passage.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyContent)
	}

	if len(passage.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrMissingVector)
	}

	return nil
}

// PassageID derives the content ID for a passage from its provenance and text.
func PassageID(source string, page Page, content string) ID {
	return IDFromContent(source + "\x00" + page.String() + "\x00" + content)
}
