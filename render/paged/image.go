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
	"fmt"
	"image"
	"image/color"

	"seehuhn.de/go/typeset/internal/pdf"
	"seehuhn.de/go/typeset/layout"
)

// imageRes is an image XObject.
type imageRes struct {
	name pdf.Name
	ref  pdf.Reference
}

// image writes an image XObject.  Images which occur several times are
// written only once.
func (e *encoder) image(im *layout.Image) (*imageRes, error) {
	if res, ok := e.images[im.Image]; ok {
		return res, nil
	}

	var ref pdf.Reference
	var err error
	if im.Format == "jpeg" && im.Data != nil {
		ref, err = e.writeJPEG(im)
	} else {
		ref, err = e.writeSamples(im.Image)
	}
	if err != nil {
		return nil, err
	}

	res := &imageRes{
		name: pdf.Name(fmt.Sprintf("I%d", len(e.images)+1)),
		ref:  ref,
	}
	e.images[im.Image] = res
	return res, nil
}

// writeJPEG embeds JPEG data unchanged.
func (e *encoder) writeJPEG(im *layout.Image) (pdf.Reference, error) {
	b := im.Image.Bounds()
	var cs pdf.Name
	switch im.Image.ColorModel() {
	case color.GrayModel:
		cs = "DeviceGray"
	case color.CMYKModel:
		// Adobe CMYK JPEGs are inverted, the samples path handles these
		return e.writeSamples(im.Image)
	default:
		cs = "DeviceRGB"
	}
	dict := pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(b.Dx()),
		"Height":           pdf.Integer(b.Dy()),
		"ColorSpace":       cs,
		"BitsPerComponent": pdf.Integer(8),
	}
	return e.writeStream(dict, im.Data, pdf.FilterDCT{})
}

// writeSamples stores the image as 8-bit RGB samples.  If the image is
// not opaque, the alpha channel is stored as a soft mask.
func (e *encoder) writeSamples(img image.Image) (pdf.Reference, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, 3*w*h)
	alpha := make([]byte, 0, w*h)
	opaque := true
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
			if c.A != 255 {
				opaque = false
			}
		}
	}

	dict := pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(w),
		"Height":           pdf.Integer(h),
		"ColorSpace":       pdf.Name("DeviceRGB"),
		"BitsPerComponent": pdf.Integer(8),
	}
	if !opaque {
		maskRef, err := e.writeStream(pdf.Dict{
			"Type":             pdf.Name("XObject"),
			"Subtype":          pdf.Name("Image"),
			"Width":            pdf.Integer(w),
			"Height":           pdf.Integer(h),
			"ColorSpace":       pdf.Name("DeviceGray"),
			"BitsPerComponent": pdf.Integer(8),
		}, alpha, e.filters...)
		if err != nil {
			return 0, err
		}
		dict["SMask"] = maskRef
	}
	return e.writeStream(dict, rgb, e.filters...)
}
