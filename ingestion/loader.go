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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/intellicourse/core"
)

// Document is one unit of loaded text with its provenance.
// PDF files produce one Document per page; text files produce one Document.
type Document struct {
	Content string
	Source  string
	Page    core.Page
}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// LoadFile loads a single file. Source is the file's base name.
// PDF pages are numbered from 0, matching PDF page-index metadata; text and
// markdown files carry no page and use core.PageUnknown.
func LoadFile(path string) ([]Document, error) {
	source := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path, source)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []Document{{Content: string(data), Source: source, Page: core.PageUnknown}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
}

func loadPDF(path, source string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	docs := make([]Document, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s page %d: %w", path, i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Content: text, Source: source, Page: pdfPage(i)})
	}
	return docs, nil
}

// pdfPage converts the reader's 1-based page number to a page index.
func pdfPage(n int) core.Page {
	return core.Page(n - 1)
}

// LoadDirectory walks dir recursively and loads every supported file in
// lexical path order. Unsupported files are skipped.
func LoadDirectory(dir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		loaded, err := LoadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
