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

// Package boxes implements a simple box and glue layout engine.
//
// Boxes are rectangular areas with a width, a height above the baseline
// and a depth below the baseline.  Boxes are arranged into horizontal and
// vertical lists and finally drawn onto the pages of a layout.Document.
package boxes

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
)

// Parameters contains the parameter values used by the layout engine.
type Parameters struct {
	BaseLineSkip float64
}

// Box represents marks on a page within a rectangular area of known size.
type Box interface {
	Extent() *BoxExtent
	Draw(page *layout.Page, xPos, yPos float64)
}

// BoxExtent gives the dimensions of a Box.
type BoxExtent struct {
	Width, Height, Depth float64
	WhiteSpaceOnly       bool
}

// Extent implements the Box interface.
func (obj BoxExtent) Extent() *BoxExtent {
	return &obj
}

// A RuleBox is a solidly filled rectangular region on the page.
type RuleBox struct {
	BoxExtent
	Fill color.Color
}

// Rule returns a new rule box.  If fill is nil, the box is invisible but
// still takes up space.
func Rule(width, height, depth float64, fill color.Color) Box {
	return &RuleBox{
		BoxExtent: BoxExtent{
			Width:  width,
			Height: height,
			Depth:  depth,
		},
		Fill: fill,
	}
}

// Draw implements the Box interface.
func (obj *RuleBox) Draw(page *layout.Page, xPos, yPos float64) {
	if obj.Fill == nil || obj.Width <= 0 || obj.Depth+obj.Height <= 0 {
		return
	}
	page.Add(&layout.Rect{
		Rect: rect.Rect{
			LLx: xPos,
			LLy: yPos - obj.Depth,
			URx: xPos + obj.Width,
			URy: yPos + obj.Height,
		},
		Fill: obj.Fill,
	})
}

// Kern represents a fixed amount of space.
type Kern float64

// Extent implements the Box interface.
func (obj Kern) Extent() *BoxExtent {
	return &BoxExtent{
		Width:          float64(obj),
		Height:         float64(obj),
		WhiteSpaceOnly: true,
	}
}

// Draw implements the Box interface.
func (obj Kern) Draw(page *layout.Page, xPos, yPos float64) {}

// TextBox represents a string of characters set in a single font.
type TextBox struct {
	Font *fonts.Font
	Size float64
	Fill color.Color
	Text string

	ext BoxExtent
}

// Text returns a new TextBox.
func Text(F *fonts.Font, ptSize float64, fill color.Color, text string) *TextBox {
	m := F.Metrics(ptSize)
	return &TextBox{
		Font: F,
		Size: ptSize,
		Fill: fill,
		Text: text,
		ext: BoxExtent{
			Width:  F.Advance(text, ptSize),
			Height: m.Ascent,
			Depth:  m.Descent,
		},
	}
}

// Extent implements the Box interface.
func (obj *TextBox) Extent() *BoxExtent {
	ext := obj.ext
	return &ext
}

// Draw implements the Box interface.
func (obj *TextBox) Draw(page *layout.Page, xPos, yPos float64) {
	if obj.Text == "" {
		return
	}
	page.Add(&layout.Text{
		Pos:  vec.Vec2{X: xPos, Y: yPos},
		Font: obj.Font,
		Size: obj.Size,
		Fill: obj.Fill,
		Text: obj.Text,
	})
}

// ImageBox is a raster image which sits on the baseline.
type ImageBox struct {
	BoxExtent

	Image  image.Image
	Data   []byte
	Format string
}

// Image returns a new ImageBox of the given size.
func Image(img image.Image, data []byte, format string, width, height float64) *ImageBox {
	return &ImageBox{
		BoxExtent: BoxExtent{Width: width, Height: height},
		Image:     img,
		Data:      data,
		Format:    format,
	}
}

// Draw implements the Box interface.
func (obj *ImageBox) Draw(page *layout.Page, xPos, yPos float64) {
	page.Add(&layout.Image{
		Rect: rect.Rect{
			LLx: xPos,
			LLy: yPos - obj.Depth,
			URx: xPos + obj.Width,
			URy: yPos + obj.Height,
		},
		Image:  obj.Image,
		Data:   obj.Data,
		Format: obj.Format,
	})
}

// Ship draws the box onto a new page of exactly the size of the box.
func Ship(box Box) *layout.Page {
	ext := box.Extent()
	page := layout.NewPage(ext.Width, ext.Depth+ext.Height)
	box.Draw(page, 0, ext.Depth)
	return page
}

type walker interface {
	Walk(func(Box))
}

// Walk calls fn for every box in the tree rooted at box.
func Walk(box Box, fn func(Box)) {
	fn(box)
	if w, ok := box.(walker); ok {
		w.Walk(func(child Box) {
			Walk(child, fn)
		})
	}
}
