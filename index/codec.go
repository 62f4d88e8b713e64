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


package index

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/docit/core"
)

// MUS serializers for the snapshot file. Strings and slices are
// length-prefixed; floats are fixed-width so vectors decode without drift.

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type chunkMetaSer struct{}

var chunkMetaMUS = chunkMetaSer{}

func (chunkMetaSer) Marshal(v core.ChunkMeta, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	n += ord.String.Marshal(string(v.Type), bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += varint.Int.Marshal(v.Page, bs[n:])
	n += ord.Bool.Marshal(v.OCR, bs[n:])
	n += ord.String.Marshal(v.WhisperModel, bs[n:])
	return
}

func (chunkMetaSer) Unmarshal(bs []byte) (v core.ChunkMeta, n int, err error) {
	var n1 int
	v.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var typ string
	typ, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type = core.DocumentType(typ)
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Page, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OCR, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.WhisperModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkMetaSer) Size(v core.ChunkMeta) (size int) {
	size = ord.String.Size(v.Source)
	size += ord.String.Size(string(v.Type))
	size += ord.String.Size(v.Name)
	size += varint.Int.Size(v.Page)
	size += ord.Bool.Size(v.OCR)
	size += ord.String.Size(v.WhisperModel)
	return
}

func (chunkMetaSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

type recordSer struct{}

var recordMUS = recordSer{}

func (recordSer) Marshal(v Record, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.ID), bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += chunkMetaMUS.Marshal(v.Meta, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return
}

func (recordSer) Unmarshal(bs []byte) (v Record, n int, err error) {
	var n1 int
	var id uint64
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ID = core.ID(id)
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Meta, n1, err = chunkMetaMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (recordSer) Size(v Record) (size int) {
	size = varint.Uint64.Size(uint64(v.ID))
	size += ord.String.Size(v.Text)
	size += chunkMetaMUS.Size(v.Meta)
	size += vectorMUS.Size(v.Vector)
	return
}

func (recordSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = chunkMetaMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}

var recordSliceMUS = ord.NewSliceSer[Record](recordMUS)

type snapshotSer struct{}

var snapshotMUS = snapshotSer{}

func (snapshotSer) Marshal(v Snapshot, bs []byte) (n int) {
	n = ord.String.Marshal(v.Generation, bs)
	n += ord.String.Marshal(v.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(v.Dimension, bs[n:])
	n += recordSliceMUS.Marshal(v.Records, bs[n:])
	return
}

func (snapshotSer) Unmarshal(bs []byte) (v Snapshot, n int, err error) {
	var n1 int
	v.Generation, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dimension, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Records, n1, err = recordSliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (snapshotSer) Size(v Snapshot) (size int) {
	size = ord.String.Size(v.Generation)
	size += ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.Dimension)
	size += recordSliceMUS.Size(v.Records)
	return
}

func (snapshotSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = recordSliceMUS.Skip(bs[n:])
	n += n1
	return
}

// MarshalSnapshot serializes a snapshot to bytes.
func MarshalSnapshot(snap *Snapshot) []byte {
	buf := make([]byte, snapshotMUS.Size(*snap))
	snapshotMUS.Marshal(*snap, buf)
	return buf
}

// UnmarshalSnapshot deserializes a snapshot from bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	snap, _, err := snapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}
