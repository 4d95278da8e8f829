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

package engine

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/zeebo/xxh3"
)

// Library is the standard library of a compiler: the global functions
// which can be called from documents, and the default styles.
type Library struct {
	// Functions lists the names of the global functions, in sorted order.
	Functions []string

	Defaults Defaults
}

// Defaults are the initial style settings of a document.
// Lengths are in PDF points.
type Defaults struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	FontFamily string
	FontSize   float64
	Leading    float64 // baseline distance, relative to the font size
}

// NewLibrary returns a library with the given function names and defaults.
func NewLibrary(functions []string, defaults Defaults) *Library {
	names := slices.Clone(functions)
	slices.Sort(names)
	names = slices.Compact(names)
	return &Library{
		Functions: names,
		Defaults:  defaults,
	}
}

// Has reports whether name is a global function of the library.
func (lib *Library) Has(name string) bool {
	_, found := slices.BinarySearch(lib.Functions, name)
	return found
}

// Hash returns a fingerprint of the library contents.
func (lib *Library) Hash() uint64 {
	h := xxh3.New()
	for _, name := range lib.Functions {
		h.WriteString(name)
		h.Write([]byte{0})
	}
	var buf [8]byte
	for _, x := range []float64{
		lib.Defaults.PageWidth,
		lib.Defaults.PageHeight,
		lib.Defaults.Margin,
		lib.Defaults.FontSize,
		lib.Defaults.Leading,
	} {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	h.WriteString(lib.Defaults.FontFamily)
	return h.Sum64()
}
