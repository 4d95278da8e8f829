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
	"sync"

	"golang.org/x/image/draw"
)

// scalerCacheSize is the number of scalers kept by a Resizer.
const scalerCacheSize = 16

// Resizer resamples images.  Scalers for kernel interpolators are
// expensive to set up; a Resizer keeps the most recently used ones.
//
// A Resizer can be used concurrently.
type Resizer struct {
	interp draw.Interpolator

	mu    sync.Mutex
	cache *lruCache[scaleKey, draw.Scaler]
}

type scaleKey struct {
	dw, dh, sw, sh int
}

// NewResizer returns a Resizer which uses the given interpolator.
// If interp is nil, draw.CatmullRom is used.
func NewResizer(interp draw.Interpolator) *Resizer {
	if interp == nil {
		interp = draw.CatmullRom
	}
	return &Resizer{
		interp: interp,
		cache:  newCache[scaleKey, draw.Scaler](scalerCacheSize),
	}
}

// scaler returns a scaler for the given source and destination sizes.
func (rs *Resizer) scaler(dw, dh, sw, sh int) draw.Scaler {
	k, ok := rs.interp.(*draw.Kernel)
	if !ok {
		return rs.interp
	}

	key := scaleKey{dw, dh, sw, sh}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if s, ok := rs.cache.Get(key); ok {
		return s
	}
	s := k.NewScaler(dw, dh, sw, sh)
	rs.cache.Put(key, s)
	return s
}

// Resize scales src to a new premultiplied image of the given size.
func (rs *Resizer) Resize(src *image.RGBA, dw, dh int) (*image.RGBA, error) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return nil, &ResizeError{Msg: "empty source image"}
	}
	if len(src.Pix) < (sh-1)*src.Stride+4*sw {
		return nil, &ResizeError{Msg: "source buffer too small"}
	}
	if dw <= 0 || dh <= 0 {
		return nil, &ResizeError{Msg: "empty destination image"}
	}
	if !fits(dw, dh) {
		return nil, &ResizeError{Msg: "destination image too large"}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if dw == sw && dh == sh {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
		return dst, nil
	}
	rs.scaler(dw, dh, sw, sh).Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst, nil
}
