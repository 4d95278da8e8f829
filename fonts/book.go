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
	"strings"
)

// Style distinguishes upright from slanted faces.
type Style int

// These are the supported font styles.
const (
	Normal Style = iota
	Italic
	Oblique
)

func (s Style) String() string {
	switch s {
	case Italic:
		return "italic"
	case Oblique:
		return "oblique"
	default:
		return "normal"
	}
}

// Variant selects a face within a font family.
type Variant struct {
	Style   Style
	Weight  int // 100 to 900, 400 is regular
	Stretch int // 1 to 9, 5 is normal
}

// DefaultVariant is the regular upright face.
var DefaultVariant = Variant{Style: Normal, Weight: 400, Stretch: 5}

// Info describes a font face.
type Info struct {
	Family         string
	PostScriptName string
	Style          Style
	Weight         int
	Stretch        int

	// Fingerprint identifies the face data.
	Fingerprint uint64
}

// Variant returns the variant of the face.
func (info Info) Variant() Variant {
	return Variant{Style: info.Style, Weight: info.Weight, Stretch: info.Stretch}
}

// Book is an immutable list of font descriptions.
type Book struct {
	infos []Info
}

// NewBook creates a book with the given entries.
func NewBook(infos []Info) *Book {
	return &Book{infos: slices.Clone(infos)}
}

// with returns a new book with the given entries appended.
func (b *Book) with(infos ...Info) *Book {
	res := make([]Info, 0, len(b.infos)+len(infos))
	res = append(res, b.infos...)
	res = append(res, infos...)
	return &Book{infos: res}
}

// Len returns the number of entries in the book.
func (b *Book) Len() int {
	return len(b.infos)
}

// Info returns entry i of the book.
func (b *Book) Info(i int) (Info, bool) {
	if i < 0 || i >= len(b.infos) {
		return Info{}, false
	}
	return b.infos[i], true
}

// Families returns the family names in the book, in sorted order.
func (b *Book) Families() []string {
	seen := make(map[string]bool)
	var res []string
	for _, info := range b.infos {
		key := strings.ToLower(info.Family)
		if info.Family == "" || seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, info.Family)
	}
	slices.SortFunc(res, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return res
}

// Select returns the index of the face in the given family which best
// matches the variant.  Family names are compared case-insensitively.
// The boolean result is false if the family is not in the book.
//
// The style is matched first, with italic and oblique as mutual
// fallbacks, then the stretch and finally the weight.  Among equally good
// matches the first one wins.
func (b *Book) Select(family string, v Variant) (int, bool) {
	best := -1
	var bestScore [3]int
	for i, info := range b.infos {
		if !strings.EqualFold(info.Family, family) {
			continue
		}
		score := [3]int{
			styleDistance(v.Style, info.Style),
			abs(v.Stretch - info.Stretch),
			weightDistance(v.Weight, info.Weight),
		}
		if best < 0 || slices.Compare(score[:], bestScore[:]) < 0 {
			best = i
			bestScore = score
		}
	}
	return best, best >= 0
}

func styleDistance(want, have Style) int {
	switch {
	case want == have:
		return 0
	case want != Normal && have != Normal:
		return 1
	default:
		return 2
	}
}

// weightDistance prefers heavier faces when a bold weight is requested and
// lighter ones otherwise, as in CSS font matching.
func weightDistance(want, have int) int {
	d := abs(want - have)
	heavier := have > want
	if want >= 500 && !heavier || want < 500 && heavier {
		d += 1
	}
	return 2 * d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
