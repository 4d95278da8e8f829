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

package paged

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"seehuhn.de/go/sfnt/os2"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/internal/pdf"
)

// fontRes is a font used in the document.
type fontRes struct {
	name pdf.Name
	ref  pdf.Reference

	// font is the face which is embedded.  This can differ from the face
	// used for layout, if that face cannot be embedded.
	font *fonts.Font
	used [256]bool
}

// fallbackFont is used in place of faces which cannot be embedded.
var fallbackFont = sync.OnceValue(func() *fonts.Font {
	ff, err := fonts.Parse(fonts.Embedded()[0])
	if err != nil || len(ff) == 0 {
		panic("embedded font is invalid")
	}
	return ff[0]
})

// embeddable reports whether the font data can be stored in a PDF file
// of the given version.
func embeddable(F *fonts.Font, ver pdf.Version) bool {
	if F.IsCollection() {
		return false
	}
	if isCFF(F) {
		return ver >= pdf.V1_6
	}
	return true
}

func isCFF(F *fonts.Font) bool {
	return bytes.HasPrefix(F.Data(), []byte("OTTO"))
}

func (e *encoder) font(F *fonts.Font) (*fontRes, error) {
	if F == nil {
		return nil, fmt.Errorf("text without a font")
	}
	if res, ok := e.fonts[F]; ok {
		return res, nil
	}

	use := F
	if !embeddable(F, e.out.Version()) {
		use = fallbackFont()
		e.log.Debug("font replaced",
			slog.String("font", F.Info().PostScriptName),
			slog.String("replacement", use.Info().PostScriptName))
	}
	res := &fontRes{
		name: pdf.Name(fmt.Sprintf("F%d", len(e.fonts)+1)),
		ref:  e.out.Alloc(),
		font: use,
	}
	e.fonts[F] = res
	return res, nil
}

// encode converts text to WinAnsi encoding.
func (res *fontRes) encode(text string) []byte {
	buf := make([]byte, 0, len(text))
	for _, r := range text {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		res.used[c] = true
		buf = append(buf, c)
	}
	return buf
}

// show writes the argument of a TJ operator for text, including the
// kerning adjustments.
func (res *fontRes) show(w io.Writer, text string) error {
	codes := res.encode(text)

	var arr pdf.Array
	start := 0
	for i := 1; i < len(codes); i++ {
		prev := charmap.Windows1252.DecodeByte(codes[i-1])
		cur := charmap.Windows1252.DecodeByte(codes[i])
		k := math.Round(res.font.Kern(prev, cur))
		if k == 0 {
			continue
		}
		arr = append(arr, pdf.String(codes[start:i]), pdf.Integer(-k))
		start = i
	}
	arr = append(arr, pdf.String(codes[start:]))
	return arr.PDF(w)
}

func (e *encoder) writeFonts() error {
	list := slices.SortedFunc(maps.Values(e.fonts), func(a, b *fontRes) int {
		return cmp.Compare(a.ref, b.ref)
	})
	for _, res := range list {
		err := e.writeFont(res)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeFont writes the font dictionary, the font descriptor and the font
// file of a simple TrueType or OpenType font.
func (e *encoder) writeFont(res *fontRes) error {
	first, last := -1, -1
	for c, used := range res.used {
		if used {
			if first < 0 {
				first = c
			}
			last = c
		}
	}
	if first < 0 {
		first, last = 32, 32
	}

	F := res.font
	widths := make(pdf.Array, 0, last-first+1)
	for c := first; c <= last; c++ {
		w := 0.0
		if res.used[c] {
			w = F.GlyphWidth(charmap.Windows1252.DecodeByte(byte(c)))
		}
		widths = append(widths, pdf.Integer(math.Round(w)))
	}

	fontName := pdf.Name(baseFontName(F))

	// See section 9.9 of PDF 32000-1:2008.
	fileDict := pdf.Dict{}
	fileKey := pdf.Name("FontFile2")
	subtype := pdf.Name("TrueType")
	if isCFF(F) {
		fileDict["Subtype"] = pdf.Name("OpenType")
		fileKey = "FontFile3"
	} else {
		fileDict["Length1"] = pdf.Integer(len(F.Data()))
	}
	fileRef, err := e.writeStream(fileDict, F.Data(), e.filters...)
	if err != nil {
		return err
	}

	m := F.Metrics(1000)
	bbox := F.BBox()
	italicAngle := 0.0
	if meta := F.Meta(); meta != nil {
		italicAngle = meta.ItalicAngle
	}

	// See section 9.8.1 of PDF 32000-1:2008.
	descRef := e.out.Alloc()
	err = e.out.Put(descRef, pdf.Dict{
		"Type":     pdf.Name("FontDescriptor"),
		"FontName": fontName,
		"Flags":    pdf.Integer(makeFlags(F)),
		"FontBBox": pdf.Array{
			pdf.Integer(math.Floor(bbox.LLx)), pdf.Integer(math.Floor(bbox.LLy)),
			pdf.Integer(math.Ceil(bbox.URx)), pdf.Integer(math.Ceil(bbox.URy)),
		},
		"ItalicAngle": pdf.Real(italicAngle),
		"Ascent":      pdf.Integer(math.Round(m.Ascent)),
		"Descent":     pdf.Integer(math.Round(-m.Descent)),
		"CapHeight":   pdf.Integer(math.Round(m.CapHeight)),
		"StemV":       pdf.Integer(70),
		fileKey:       fileRef,
	})
	if err != nil {
		return err
	}

	// See sections 9.6.3 and 9.6.2.1 of PDF 32000-1:2008.
	return e.out.Put(res.ref, pdf.Dict{
		"Type":           pdf.Name("Font"),
		"Subtype":        subtype,
		"BaseFont":       fontName,
		"Encoding":       pdf.Name("WinAnsiEncoding"),
		"FirstChar":      pdf.Integer(first),
		"LastChar":       pdf.Integer(last),
		"Widths":         widths,
		"FontDescriptor": descRef,
	})
}

// baseFontName returns the PostScript name of a font, restricted to the
// characters allowed in PDF font names.
func baseFontName(F *fonts.Font) string {
	name := F.Info().PostScriptName
	if name == "" {
		name = F.Info().Family
	}
	name = strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%", r) {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "Font"
	}
	return name
}

type fontFlags int

const (
	fontFlagFixedPitch  fontFlags = 1 << 0
	fontFlagSerif       fontFlags = 1 << 1
	fontFlagScript      fontFlags = 1 << 3
	fontFlagNonsymbolic fontFlags = 1 << 5
	fontFlagItalic      fontFlags = 1 << 6
	fontFlagForceBold   fontFlags = 1 << 18
)

// makeFlags computes the font descriptor flags.  The fonts are always
// used with the WinAnsi encoding, so the nonsymbolic flag is set.
func makeFlags(F *fonts.Font) fontFlags {
	flags := fontFlagNonsymbolic
	info := F.Info()
	if info.Style != fonts.Normal {
		flags |= fontFlagItalic
	}
	if info.Weight >= int(os2.WeightBold) {
		flags |= fontFlagForceBold
	}
	if meta := F.Meta(); meta != nil {
		if meta.IsFixedPitch() {
			flags |= fontFlagFixedPitch
		}
		if meta.IsSerif {
			flags |= fontFlagSerif
		}
		if meta.IsScript {
			flags |= fontFlagScript
		}
	}
	return flags
}
