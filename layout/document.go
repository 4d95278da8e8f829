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

// Package layout describes laid-out documents.
//
// A Document is the output of a compiler and the input of the renderers.
// Page coordinates are in PDF points, with the origin in the bottom-left
// corner of the page and the y-axis pointing upwards.
package layout

import (
	"image"
	"image/color"
	"time"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/typeset/fonts"
)

// Document is a laid-out document.
type Document struct {
	Pages []*Page

	Title    string
	Author   []string
	Keywords []string

	// Date is the creation date of the document, if known.
	Date time.Time
}

// Page is a single page of a document.
type Page struct {
	Width, Height float64

	// Fill is the background colour of the page.
	// If Fill is nil, the page is transparent.
	Fill color.Color

	Items []Item
}

// NewPage allocates a new white page of the given size.
func NewPage(width, height float64) *Page {
	return &Page{
		Width:  width,
		Height: height,
		Fill:   color.White,
	}
}

// Add appends items to the page.  Later items are painted on top of
// earlier ones.
func (p *Page) Add(items ...Item) {
	p.Items = append(p.Items, items...)
}

// BBox returns the page area.
func (p *Page) BBox() rect.Rect {
	return rect.Rect{LLx: 0, LLy: 0, URx: p.Width, URy: p.Height}
}

// Item is a mark on a page.
// The possible types are *Text, *Image and *Rect.
type Item interface {
	isItem()
}

// Text is a run of text in a single font.
type Text struct {
	// Pos is the start of the baseline.
	Pos vec.Vec2

	Font *fonts.Font
	Size float64
	Fill color.Color
	Text string
}

// Width returns the advance width of the text.
func (t *Text) Width() float64 {
	return t.Font.Advance(t.Text, t.Size)
}

// Image is a raster image, scaled to fill Rect.
type Image struct {
	Rect rect.Rect

	// Image is the decoded image.
	Image image.Image

	// Data optionally holds the encoded image, in the given Format
	// ("jpeg", "png", ...).  Renderers can use this to embed the original
	// file.
	Data   []byte
	Format string
}

// Rect is a filled rectangle.
type Rect struct {
	Rect rect.Rect
	Fill color.Color
}

func (*Text) isItem()  {}
func (*Image) isItem() {}
func (*Rect) isItem()  {}

// NRGBA converts c to straight-alpha 8-bit colour.
// A nil colour gives transparent black.
func NRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
