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

// Package raster renders the first page of a laid-out document as a
// pixel buffer.
//
// The page is drawn at a given resolution, an optional background colour
// is painted behind transparent areas, and the result is resampled to the
// requested size.  Resampling operates on premultiplied colours; the
// returned pixels use straight alpha.
package raster

import (
	"encoding/hex"
	"image"
	"image/color"
	"math"
	"strings"

	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

// Pixmap is an image with straight (non-premultiplied) 8-bit RGBA pixels,
// stored row by row without padding.
type Pixmap struct {
	Width, Height int
	Pix           []byte
}

// Image returns the pixmap as an image.NRGBA which shares the pixel data.
func (p *Pixmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: 4 * p.Width,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// ResizeError is returned when a page cannot be converted to a pixmap of
// the requested size.
type ResizeError struct {
	Msg string
}

func (err *ResizeError) Error() string {
	return "resize failed: " + err.Msg
}

// Render draws the first page of doc at scale pixels per point and
// resamples the result.  If byWidth is true, the width of the pixmap is
// size and the height is chosen to preserve the aspect ratio; otherwise
// the height is size.
//
// If fill is a colour of the form "#RRGGBBAA" with non-zero alpha, all
// transparent pixels are set to this colour before resampling.  Invalid
// fill strings are ignored.
//
// If rs is nil, a new Resizer with the default interpolator is used.
func Render(rs *Resizer, doc *layout.Document, scale float64, fill string, size int, byWidth bool) (*Pixmap, error) {
	page, err := render.FirstPage(doc)
	if err != nil {
		return nil, err
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, &ResizeError{Msg: "invalid scale"}
	}

	w, h := pageSize(page, scale)
	if !fits(w, h) {
		return nil, &ResizeError{Msg: "page too large"}
	}
	img := Page(page, scale)

	if bg, ok := ParseFill(fill); ok {
		FillTransparent(img, bg)
	}

	b := img.Bounds()
	dw, dh := TargetSize(b.Dx(), b.Dy(), size, byWidth)

	if rs == nil {
		rs = NewResizer(nil)
	}
	dst, err := rs.Resize(img, dw, dh)
	if err != nil {
		return nil, err
	}

	unpremultiply(dst.Pix)
	return &Pixmap{
		Width:  dw,
		Height: dh,
		Pix:    dst.Pix,
	}, nil
}

// ParseFill decodes a colour of the form "#RRGGBBAA".  The leading "#" is
// optional and bytes beyond the fourth are ignored.  The result is false
// if s is not valid hex, is too short, or has zero alpha.
func ParseFill(s string) (color.NRGBA, bool) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(data) < 4 || data[3] == 0 {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: data[0], G: data[1], B: data[2], A: data[3]}, true
}

// FillTransparent replaces every fully transparent pixel of img by c.
// Pixels with non-zero alpha are left unchanged.
func FillTransparent(img *image.RGBA, c color.NRGBA) {
	pc := color.RGBAModel.Convert(c).(color.RGBA)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] != 0 {
				continue
			}
			row[i] = pc.R
			row[i+1] = pc.G
			row[i+2] = pc.B
			row[i+3] = pc.A
		}
	}
}

// TargetSize returns the destination size for a source of size w×h.
// The selected side is set to size, the other side is scaled
// proportionally and truncated.
func TargetSize(w, h, size int, byWidth bool) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if byWidth {
		return size, int(float64(size) / float64(w) * float64(h))
	}
	return int(float64(size) / float64(h) * float64(w)), size
}

// Images are limited to maxSide pixels in either direction and to
// maxPixels pixels in total.
const (
	maxSide   = 1 << 15
	maxPixels = 1 << 26
)

// fits reports whether a w×h image is within the size limits.
func fits(w, h int) bool {
	return w <= maxSide && h <= maxSide && w*h <= maxPixels
}

// unpremultiply converts premultiplied RGBA pixels to straight alpha, in
// place.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := int(pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for j := range 3 {
			v := (int(pix[i+j])*255 + a/2) / a
			pix[i+j] = uint8(min(v, 255))
		}
	}
}
