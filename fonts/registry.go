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

package fonts

import (
	"slices"
	"sync"
)

// Registry is the list of font faces available to a compilation, together
// with the matching Book.
//
// Adding fonts must not happen concurrently with a compilation that uses
// the registry.  The registry is internally locked, so that misuse cannot
// break the correspondence between faces and book entries.
type Registry struct {
	mu    sync.RWMutex
	fonts []*Font
	book  *Book
}

// NewRegistry creates a registry which holds the embedded fonts.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Seed()
	return r
}

// Seed resets the registry to the embedded fonts.
func (r *Registry) Seed() {
	fonts := slices.Clone(embeddedFonts())
	infos := make([]Info, len(fonts))
	for i, f := range fonts {
		infos[i] = f.Info()
	}

	r.mu.Lock()
	r.fonts = fonts
	r.book = &Book{infos: infos}
	r.mu.Unlock()
}

// Append parses the faces in data and adds them to the registry.
// The return value is the number of faces added.  Data which does not
// contain any usable face is ignored.
func (r *Registry) Append(data []byte) int {
	fonts, err := Parse(data)
	if err != nil || len(fonts) == 0 {
		return 0
	}
	infos := make([]Info, len(fonts))
	for i, f := range fonts {
		infos[i] = f.Info()
	}

	r.mu.Lock()
	r.fonts = append(r.fonts, fonts...)
	r.book = r.book.with(infos...)
	r.mu.Unlock()

	return len(fonts)
}

// Len returns the number of faces in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fonts)
}

// Font returns face i.
func (r *Registry) Font(i int) (*Font, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.fonts) {
		return nil, false
	}
	return r.fonts[i], true
}

// Book returns the current book.  The returned value is not affected by
// later changes to the registry.
func (r *Registry) Book() *Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book
}
