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

package raster

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

// Page draws p into a new premultiplied image, at scale pixels per point.
// Areas not covered by the page background or by any item stay
// transparent.
//
// The caller must make sure that the image size is reasonable.
func Page(p *layout.Page, scale float64) *image.RGBA {
	w, h := pageSize(p, scale)

	r := &pageRenderer{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		raster: vector.NewRasterizer(w, h),
		scale:  scale,
		height: p.Height * scale,
		faces:  make(map[faceKey]font.Face),
	}
	defer r.close()

	if render.Visible(p.Fill) {
		draw.Draw(r.img, r.img.Bounds(), image.NewUniform(p.Fill), image.Point{}, draw.Src)
	}
	for _, item := range p.Items {
		switch item := item.(type) {
		case *layout.Rect:
			r.drawRect(item)
		case *layout.Text:
			r.drawText(item)
		case *layout.Image:
			r.drawImage(item)
		}
	}
	return r.img
}

// pageSize returns the size of the image for p, in pixels.
func pageSize(p *layout.Page, scale float64) (int, int) {
	w := math.Ceil(p.Width*scale - 1e-6)
	h := math.Ceil(p.Height*scale - 1e-6)
	// keep the float to int conversion in range
	w = min(max(w, 0), 2*maxSide)
	h = min(max(h, 0), 2*maxSide)
	return int(w), int(h)
}

type faceKey struct {
	font *fonts.Font
	size float64
}

type pageRenderer struct {
	img    *image.RGBA
	raster *vector.Rasterizer
	scale  float64
	height float64

	faces map[faceKey]font.Face
}

// device maps page coordinates to pixel coordinates.
func (r *pageRenderer) device(x, y float64) (float64, float64) {
	return x * r.scale, r.height - y*r.scale
}

func (r *pageRenderer) drawRect(item *layout.Rect) {
	if !render.Visible(item.Fill) {
		return
	}
	x0, y0 := r.device(item.Rect.LLx, item.Rect.LLy)
	x1, y1 := r.device(item.Rect.URx, item.Rect.URy)

	b := r.img.Bounds()
	r.raster.Reset(b.Dx(), b.Dy())
	r.raster.MoveTo(float32(x0), float32(y0))
	r.raster.LineTo(float32(x1), float32(y0))
	r.raster.LineTo(float32(x1), float32(y1))
	r.raster.LineTo(float32(x0), float32(y1))
	r.raster.ClosePath()
	r.raster.Draw(r.img, b, image.NewUniform(item.Fill), image.Point{})
}

func (r *pageRenderer) drawText(item *layout.Text) {
	if item.Font == nil || item.Text == "" || !render.Visible(item.Fill) {
		return
	}
	face := r.face(item.Font, item.Size*r.scale)
	if face == nil {
		return
	}
	x, y := r.device(item.Pos.X, item.Pos.Y)
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(item.Fill),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(item.Text)
}

func (r *pageRenderer) face(F *fonts.Font, size float64) font.Face {
	key := faceKey{F, size}
	if face, ok := r.faces[key]; ok {
		return face
	}
	face, err := F.Face(size)
	if err != nil {
		face = nil
	}
	r.faces[key] = face
	return face
}

func (r *pageRenderer) drawImage(item *layout.Image) {
	if item.Image == nil {
		return
	}
	x0, y0 := r.device(item.Rect.LLx, item.Rect.URy)
	x1, y1 := r.device(item.Rect.URx, item.Rect.LLy)
	dr := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)))
	if dr.Empty() {
		return
	}
	draw.BiLinear.Scale(r.img, dr, item.Image, item.Image.Bounds(), draw.Over, nil)
}

func (r *pageRenderer) close() {
	for _, face := range r.faces {
		if face != nil {
			face.Close()
		}
	}
}

func toFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(x * 64))
}
