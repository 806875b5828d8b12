package badger

import (
	"encoding/binary"

	"github.com/poiesic/intellicourse/core"
)

// Key prefixes for different data types
const (
	passagePrefix       = "pasrec:"
	passageSourcePrefix = "passrc:"
	catalogMetaDimKey   = "catmeta:dim"
)

// makePassageKey generates a key for a passage by ID.
// Format: prefix + big-endian ID
func makePassageKey(id core.ID) []byte {
	buf := make([]byte, len(passagePrefix)+8)
	offset := copy(buf, passagePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSourceKey generates a composite key for the source index.
// Format: prefix:source\x00id
func makeSourceKey(source string, id core.ID) []byte {
	partial := makePartialSourceKey(source)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSourceKey generates a partial key for source queries.
// The trailing NUL keeps "a.pdf" from matching "a.pdf.bak".
func makePartialSourceKey(source string) []byte {
	buf := make([]byte, 0, len(passageSourcePrefix)+len(source)+1)
	buf = append(buf, passageSourcePrefix...)
	buf = append(buf, source...)
	return append(buf, 0)
}

// idFromSourceKey extracts the passage ID from a source index key.
func idFromSourceKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}
