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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/intellicourse/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "CS101.txt"), "CS101 Intro to Programming. 3 credits.")
	writeFile(t, filepath.Join(dir, "math", "MATH200.md"), "# MATH200\nLinear algebra.")
	writeFile(t, filepath.Join(dir, "notes.docx"), "ignored")

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "CS101.txt", docs[0].Source)
	assert.Equal(t, core.PageUnknown, docs[0].Page, "text files carry no page")
	assert.Contains(t, docs[0].Content, "3 credits")

	assert.Equal(t, "MATH200.md", docs[1].Source, "source is the base name")
}

func TestLoadDirectory_Missing(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.docx")
	writeFile(t, path, "x")

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestLoadFile_InvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	writeFile(t, path, "not a pdf")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.PDF"))
	assert.True(t, Supported("dir/b.md"))
	assert.True(t, Supported("c.txt"))
	assert.False(t, Supported("d.html"))
	assert.False(t, Supported("README"))
}

func TestSplitter(t *testing.T) {
	splitter, err := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)

	short := Document{Content: "  Short course description.  ", Source: "CS101.pdf", Page: 2}
	long := Document{Content: strings.Repeat("Students learn loops and functions. ", 100), Source: "CS102.pdf", Page: 5}
	blank := Document{Content: "   \n\n  ", Source: "empty.txt"}

	chunks, err := splitter.Split([]Document{short, long, blank})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	assert.Equal(t, Chunk{Content: "Short course description.", Source: "CS101.pdf", Page: 2}, chunks[0])
	for _, c := range chunks[1:] {
		assert.Equal(t, "CS102.pdf", c.Source)
		assert.Equal(t, core.Page(5), c.Page)
		assert.LessOrEqual(t, len(c.Content), DefaultChunkSize)
		assert.NotEmpty(t, c.Content)
	}
}

func TestNewSplitter_Invalid(t *testing.T) {
	for _, tc := range []struct{ size, overlap int }{{0, 0}, {100, -1}, {100, 100}, {100, 150}} {
		_, err := NewSplitter(tc.size, tc.overlap)
		assert.ErrorIs(t, err, ErrInvalidChunking, "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestPDFPageIndex(t *testing.T) {
	assert.Equal(t, core.Page(0), pdfPage(1), "first page is index 0")
	assert.Equal(t, core.Page(2), pdfPage(3))
}
