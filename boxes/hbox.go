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

package boxes

import (
	"math"

	"seehuhn.de/go/typeset/layout"
)

// hBox represents a Box which contains a row of sub-objects.
type hBox struct {
	BoxExtent

	Contents []Box
}

// HBox creates a new HBox
func HBox(children ...Box) Box {
	hbox := &hBox{
		BoxExtent: BoxExtent{
			Height: math.Inf(-1),
			Depth:  math.Inf(-1),
		},
		Contents: children,
	}
	for _, box := range children {
		ext := box.Extent()
		hbox.Width += ext.Width
		hbox.include(ext)
	}
	hbox.finish()
	return hbox
}

// HBoxTo creates a new HBox with the given width
func HBoxTo(total float64, boxes ...Box) Box {
	hbox := &hBox{
		BoxExtent: BoxExtent{
			Width:  total,
			Height: math.Inf(-1),
			Depth:  math.Inf(-1),
		},
		Contents: boxes,
	}
	for _, box := range boxes {
		hbox.include(box.Extent())
	}
	hbox.finish()
	return hbox
}

func (obj *hBox) include(ext *BoxExtent) {
	if ext.WhiteSpaceOnly {
		return
	}
	if ext.Height > obj.Height {
		obj.Height = ext.Height
	}
	if ext.Depth > obj.Depth {
		obj.Depth = ext.Depth
	}
}

// finish fixes the extent of boxes which contain only white space.
func (obj *hBox) finish() {
	if math.IsInf(obj.Height, -1) {
		obj.Height = 0
	}
	if math.IsInf(obj.Depth, -1) {
		obj.Depth = 0
	}
}

// Walk calls fn for every child of the box.
func (obj *hBox) Walk(fn func(Box)) {
	for _, child := range obj.Contents {
		fn(child)
	}
}

// Draw implements the Box interface.
func (obj *hBox) Draw(page *layout.Page, xPos, yPos float64) {
	boxTotal := obj.Width
	contentsTotal := 0.0
	for _, child := range obj.Contents {
		ext := child.Extent()
		contentsTotal += ext.Width
	}
	contents := obj.Contents
	if contentsTotal < boxTotal-1e-3 {
		contents = stretchList(contents, boxTotal-contentsTotal, widthOf)
	} else if contentsTotal > boxTotal+1e-3 {
		contents = shrinkList(contents, contentsTotal-boxTotal, widthOf)
	}

	x := xPos
	for _, child := range contents {
		ext := child.Extent()
		child.Draw(page, x, yPos)
		x += ext.Width
	}
}

func widthOf(ext *BoxExtent) float64 {
	return ext.Width
}

func heightOf(ext *BoxExtent) float64 {
	return ext.Height + ext.Depth
}

// stretchList distributes the extra space over the stretchable glue of
// the highest level.  Glue is replaced by kerns of the resulting length.
func stretchList(contents []Box, extra float64, size func(*BoxExtent) float64) []Box {
	level := -1
	var ii []int
	stretchTotal := 0.0
	for i, child := range contents {
		stretch, ok := child.(stretcher)
		if !ok {
			continue
		}
		info := stretch.Stretch()
		if info.Val <= 0 {
			continue
		}

		if info.Level > level {
			level = info.Level
			ii = nil
			stretchTotal = 0
		} else if info.Level < level {
			continue
		}
		ii = append(ii, i)
		stretchTotal += info.Val
	}
	if stretchTotal <= 0 {
		return contents
	}

	q := extra / stretchTotal
	res := make([]Box, len(contents))
	copy(res, contents)
	for _, i := range ii {
		child := contents[i]
		amount := size(child.Extent()) + child.(stretcher).Stretch().Val*q
		res[i] = Kern(amount)
	}
	return res
}

// shrinkList removes space from the shrinkable glue of the highest level.
// Finite glue never shrinks below its natural length minus its
// shrinkability.
func shrinkList(contents []Box, excess float64, size func(*BoxExtent) float64) []Box {
	level := -1
	var ii []int
	shrinkTotal := 0.0
	for i, child := range contents {
		shrink, ok := child.(shrinker)
		if !ok {
			continue
		}
		info := shrink.Shrink()
		if info.Val <= 0 {
			continue
		}

		if info.Level > level {
			level = info.Level
			ii = nil
			shrinkTotal = 0
		} else if info.Level < level {
			continue
		}
		ii = append(ii, i)
		shrinkTotal += info.Val
	}
	if shrinkTotal <= 0 {
		return contents
	}

	q := excess / shrinkTotal
	if level == 0 && q > 1 {
		q = 1
	}
	res := make([]Box, len(contents))
	copy(res, contents)
	for _, i := range ii {
		child := contents[i]
		amount := size(child.Extent()) - child.(shrinker).Shrink().Val*q
		res[i] = Kern(amount)
	}
	return res
}
