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
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// Embedded returns the font files which are compiled into the binary.
// These are the twelve fonts of the Go font family, with Go Regular first.
// The caller must not modify the returned data.
func Embedded() [][]byte {
	return [][]byte{
		goregular.TTF,
		gobold.TTF,
		gobolditalic.TTF,
		goitalic.TTF,
		gomedium.TTF,
		gomediumitalic.TTF,
		gosmallcaps.TTF,
		gosmallcapsitalic.TTF,
		gomono.TTF,
		gomonobold.TTF,
		gomonobolditalic.TTF,
		gomonoitalic.TTF,
	}
}

// embeddedFonts parses the embedded fonts once.  The resulting Font values
// are immutable and can be shared between registries.
var embeddedFonts = sync.OnceValue(func() []*Font {
	var res []*Font
	for _, data := range Embedded() {
		ff, err := Parse(data)
		if err != nil {
			panic("fonts: embedded font is corrupt: " + err.Error())
		}
		res = append(res, ff...)
	}
	return res
})
