// seehuhn.de/go/typeset - a compilation world for document compilers
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vfs

import (
	"sync"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/source"
)

// Record holds the content of one file, either as text or as binary data.
//
// The two views Source and Bytes are computed on first use and shared
// afterwards.  A Record is immutable and safe for concurrent use.
type Record struct {
	id     files.ID
	text   string
	data   []byte
	binary bool

	srcOnce sync.Once
	src     *source.Source

	bytesOnce sync.Once
	bytes     []byte
}

// NewText creates a record holding text content.
func NewText(id files.ID, text string) *Record {
	return &Record{id: id, text: text}
}

// NewBinary creates a record holding binary content.
// The record takes ownership of data.
func NewBinary(id files.ID, data []byte) *Record {
	return &Record{id: id, data: data, binary: true}
}

// ID returns the identity of the file.
func (r *Record) ID() files.ID {
	return r.id
}

// IsBinary reports whether the record holds binary content.
func (r *Record) IsBinary() bool {
	return r.binary
}

// Source returns the text view of the record.  For binary records the
// source is empty.
func (r *Record) Source() *source.Source {
	r.srcOnce.Do(func() {
		if r.binary {
			r.src = source.New(r.id, "")
		} else {
			r.src = source.New(r.id, r.text)
		}
	})
	return r.src
}

// Bytes returns the byte view of the record.  For text records these are
// the UTF-8 bytes of the text.  The caller must not modify the returned
// slice.
func (r *Record) Bytes() []byte {
	r.bytesOnce.Do(func() {
		if r.binary {
			r.bytes = r.data
		} else {
			r.bytes = []byte(r.text)
		}
	})
	return r.bytes
}
