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


package storage

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/intellicourse/core"
)

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

// PassageMUS serializes core.Passage values.
// Layout: id, content, source, page, vector length, vector components.
var PassageMUS = passageMUS{}

type idMUS struct{}

func (idMUS) Marshal(id core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id core.ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

type passageMUS struct{}

func (passageMUS) Marshal(p core.Passage, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.Content, bs[n:])
	n += ord.String.Marshal(p.Source, bs[n:])
	n += varint.Int64.Marshal(int64(p.Page), bs[n:])
	n += varint.Int.Marshal(len(p.Vector), bs[n:])
	for _, f := range p.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func (passageMUS) Unmarshal(bs []byte) (p core.Passage, n int, err error) {
	var m int
	p.Id, m, err = IDMUS.Unmarshal(bs)
	n += m
	if err != nil {
		return
	}
	p.Content, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	p.Source, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	var page int64
	page, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	p.Page = core.Page(page)

	var length int
	length, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		err = fmt.Errorf("%w: vector length %d", ErrTruncatedData, length)
		return
	}
	if length > 0 {
		p.Vector = make([]float32, length)
	}
	for i := 0; i < length; i++ {
		var bits uint32
		bits, m, err = varint.Uint32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
		p.Vector[i] = math.Float32frombits(bits)
	}
	return
}

func (passageMUS) Size(p core.Passage) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.Content)
	size += ord.String.Size(p.Source)
	size += varint.Int64.Size(int64(p.Page))
	size += varint.Int.Size(len(p.Vector))
	for _, f := range p.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalPassage serializes a Passage to bytes.
func MarshalPassage(passage *core.Passage) []byte {
	buf := make([]byte, PassageMUS.Size(*passage))
	PassageMUS.Marshal(*passage, buf)
	return buf
}

// UnmarshalPassage deserializes a Passage from bytes.
func UnmarshalPassage(data []byte) (*core.Passage, error) {
	passage, _, err := PassageMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &passage, nil
}
