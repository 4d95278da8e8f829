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

// Package fonts implements the font registry of a compilation world.
//
// A Registry holds the list of available font faces together with a Book,
// which describes the faces and is used to select a face by family name
// and variant.  Both are kept in lockstep: the face at index i of the
// registry is described by entry i of the book.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	xsfnt "golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/os2"
)

// Font is a single parsed font face.
// A Font is immutable and safe for concurrent use.
type Font struct {
	info  Info
	data  []byte
	index int
	coll  bool
	sf    *xsfnt.Font
	upem  float64

	metaOnce sync.Once
	meta     *sfnt.Font
}

// Metrics describes the vertical metrics of a font at a given size.
// All values are in points.  Descent is positive below the baseline.
type Metrics struct {
	Ascent    float64
	Descent   float64
	LineGap   float64
	CapHeight float64
}

// Parse parses all faces contained in data.  The data can either be a
// single TrueType/OpenType font or a font collection.  Data which cannot
// be parsed as a font gives an error.
func Parse(data []byte) ([]*Font, error) {
	if len(data) == 0 {
		return nil, errNoData
	}
	coll, err := xsfnt.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	isColl := bytes.HasPrefix(data, []byte("ttcf"))
	fp := xxh3.Hash(data)

	var res []*Font
	for i := range coll.NumFonts() {
		sf, err := coll.Font(i)
		if err != nil {
			return nil, fmt.Errorf("fonts: face %d: %w", i, err)
		}
		f := &Font{
			data:  data,
			index: i,
			coll:  isColl,
			sf:    sf,
			upem:  float64(sf.UnitsPerEm()),
		}
		f.info = f.readInfo()
		f.info.Fingerprint = fp + uint64(i)
		res = append(res, f)
	}
	return res, nil
}

// readInfo extracts the description of the face.  For single fonts the
// OS/2 data is used, for members of a collection (or if the full parse
// fails) the name table.
func (f *Font) readInfo() Info {
	info := Info{
		Style:   Normal,
		Weight:  400,
		Stretch: 5,
	}
	if meta := f.Meta(); meta != nil {
		info.Family = meta.FamilyName
		info.PostScriptName = meta.PostScriptName()
		switch {
		case meta.IsItalic:
			info.Style = Italic
		case meta.IsOblique:
			info.Style = Oblique
		}
		if meta.Weight != 0 {
			info.Weight = clampInt(int(meta.Weight), 1, 1000)
		} else if meta.IsBold {
			info.Weight = int(os2.WeightBold)
		}
		if meta.Width != 0 {
			info.Stretch = clampInt(int(meta.Width), 1, 9)
		}
		if info.Family != "" {
			return info
		}
	}

	var buf xsfnt.Buffer
	if name, err := f.sf.Name(&buf, xsfnt.NameIDFamily); err == nil {
		info.Family = name
	}
	if name, err := f.sf.Name(&buf, xsfnt.NameIDPostScript); err == nil {
		info.PostScriptName = name
	}
	if sub, err := f.sf.Name(&buf, xsfnt.NameIDSubfamily); err == nil {
		info.Style, info.Weight = parseSubfamily(sub)
	}
	return info
}

// parseSubfamily guesses style and weight from a subfamily name like
// "Bold Italic".
func parseSubfamily(sub string) (Style, int) {
	style := Normal
	weight := 400
	for _, word := range strings.Fields(strings.ToLower(sub)) {
		switch word {
		case "italic":
			style = Italic
		case "oblique":
			style = Oblique
		case "thin":
			weight = 100
		case "light":
			weight = 300
		case "medium":
			weight = 500
		case "semibold":
			weight = 600
		case "bold":
			weight = 700
		case "black", "heavy":
			weight = 900
		}
	}
	return style, weight
}

// Info returns the description of the face.
func (f *Font) Info() Info {
	return f.info
}

// Data returns the font file the face was read from.  For collections this
// is the data of the whole collection.
func (f *Font) Data() []byte {
	return f.data
}

// Index returns the index of the face within its font file.
func (f *Font) Index() int {
	return f.index
}

// IsCollection reports whether the face is a member of a font collection.
func (f *Font) IsCollection() bool {
	return f.coll
}

// SFNT returns the parsed font, for glyph outlines and metrics.
func (f *Font) SFNT() *xsfnt.Font {
	return f.sf
}

// Meta returns the full parse of the font file, as used for font
// descriptors.  The result is nil for members of a collection and for
// fonts which cannot be fully parsed.
func (f *Font) Meta() *sfnt.Font {
	f.metaOnce.Do(func() {
		if f.coll {
			return
		}
		meta, err := sfnt.Read(bytes.NewReader(f.data))
		if err == nil {
			f.meta = meta
		}
	})
	return f.meta
}

// Face returns a new font.Face for drawing text at the given size.
// Sizes are in pixels, at 72 dpi this equals points.
func (f *Font) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, errInvalidSize
	}
	return opentype.NewFace(f.sf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// GlyphWidth returns the advance width of the glyph for r, in units of
// 1/1000 of the font size.  Missing glyphs give the width of the
// .notdef glyph.
func (f *Font) GlyphWidth(r rune) float64 {
	var buf xsfnt.Buffer
	gid, _ := f.sf.GlyphIndex(&buf, r)
	adv, err := f.sf.GlyphAdvance(&buf, gid, f.ppem(), font.HintingNone)
	if err != nil {
		return 0
	}
	return float64(adv) / 64 / f.upem * 1000
}

// Advance returns the width of text set at the given size, including
// kerning, in the same units as size.
func (f *Font) Advance(text string, size float64) float64 {
	var buf xsfnt.Buffer
	ppem := f.ppem()

	var total fixed.Int26_6
	prev := xsfnt.GlyphIndex(0)
	first := true
	for _, r := range text {
		gid, _ := f.sf.GlyphIndex(&buf, r)
		if !first {
			if k, err := f.sf.Kern(&buf, prev, gid, ppem, font.HintingNone); err == nil {
				total += k
			}
		}
		adv, err := f.sf.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err == nil {
			total += adv
		}
		prev = gid
		first = false
	}
	return float64(total) / 64 / f.upem * size
}

// Kern returns the kerning adjustment between a and b, in units of 1/1000
// of the font size.  Negative values move the glyphs closer together.
func (f *Font) Kern(a, b rune) float64 {
	var buf xsfnt.Buffer
	ga, _ := f.sf.GlyphIndex(&buf, a)
	gb, _ := f.sf.GlyphIndex(&buf, b)
	k, err := f.sf.Kern(&buf, ga, gb, f.ppem(), font.HintingNone)
	if err != nil {
		return 0
	}
	return float64(k) / 64 / f.upem * 1000
}

// BBox returns the union of all glyph bounding boxes, in units of 1/1000
// of the font size.
func (f *Font) BBox() rect.Rect {
	var buf xsfnt.Buffer
	b, err := f.sf.Bounds(&buf, f.ppem(), font.HintingNone)
	if err != nil {
		return rect.Rect{}
	}
	q := 1000 / f.upem / 64
	// the bounds use a downward pointing y-axis
	return rect.Rect{
		LLx: float64(b.Min.X) * q,
		LLy: -float64(b.Max.Y) * q,
		URx: float64(b.Max.X) * q,
		URy: -float64(b.Min.Y) * q,
	}
}

// HasGlyph reports whether the font has a glyph for r.
func (f *Font) HasGlyph(r rune) bool {
	var buf xsfnt.Buffer
	gid, err := f.sf.GlyphIndex(&buf, r)
	return err == nil && gid != 0
}

// Metrics returns the vertical metrics of the font at the given size.
func (f *Font) Metrics(size float64) Metrics {
	var buf xsfnt.Buffer
	m, err := f.sf.Metrics(&buf, f.ppem(), font.HintingNone)
	if err != nil {
		return Metrics{Ascent: 0.8 * size, Descent: 0.2 * size}
	}
	q := size / f.upem / 64
	res := Metrics{
		Ascent:    float64(m.Ascent) * q,
		Descent:   float64(m.Descent) * q,
		LineGap:   float64(m.Height-m.Ascent-m.Descent) * q,
		CapHeight: float64(m.CapHeight) * q,
	}
	if res.LineGap < 0 {
		res.LineGap = 0
	}
	if res.CapHeight <= 0 {
		res.CapHeight = 0.7 * res.Ascent
	}
	return res
}

// ppem returns the size at which font metrics come out in font design
// units.
func (f *Font) ppem() fixed.Int26_6 {
	return fixed.Int26_6(f.sf.UnitsPerEm()) << 6
}

var errInvalidSize = errors.New("fonts: invalid font size")
var errNoData = errors.New("fonts: no font data")

func clampInt(x, lo, hi int) int {
	return max(lo, min(x, hi))
}
