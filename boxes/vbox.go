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
	"seehuhn.de/go/typeset/layout"
)

// vBox represents a Box which contains a column of sub-objects.
type vBox struct {
	BoxExtent

	Contents []Box
}

// VBox creates a new VBox, where the baseline coincides with the baseline of
// the last child.
func (p *Parameters) VBox(children ...Box) Box {
	return p.vBoxInternal(false, children...)
}

// VTop creates a new VBox, where the baseline coincides with the baseline of
// the first child.
func (p *Parameters) VTop(children ...Box) Box {
	return p.vBoxInternal(true, children...)
}

func (p *Parameters) vBoxInternal(top bool, children ...Box) *vBox {
	vbox := &vBox{}
	totalHeight := 0.0
	firstHeight := 0.0
	lastDepth := 0.0
	first := true
	for _, child := range children {
		ext := child.Extent()

		if first {
			firstHeight = ext.Height
		}

		if first || ext.WhiteSpaceOnly {
			first = ext.WhiteSpaceOnly
		} else {
			gap := lastDepth + ext.Height
			if gap < p.BaseLineSkip {
				extra := p.BaseLineSkip - gap
				vbox.Contents = append(vbox.Contents, Kern(extra))
				totalHeight += extra
			}
		}
		vbox.Contents = append(vbox.Contents, child)
		totalHeight += ext.Depth + ext.Height

		if ext.Width > vbox.Width && !ext.WhiteSpaceOnly {
			vbox.Width = ext.Width
		}

		lastDepth = ext.Depth
	}
	if top {
		vbox.Height = firstHeight
		vbox.Depth = totalHeight - firstHeight
	} else {
		vbox.Height = totalHeight - lastDepth
		vbox.Depth = lastDepth
	}
	return vbox
}

// VBoxTo creates a new VBox with a given total height
func (p *Parameters) VBoxTo(total float64, children ...Box) Box {
	vbox := &vBox{}
	lastDepth := 0.0
	first := true
	for _, child := range children {
		ext := child.Extent()

		if first || ext.WhiteSpaceOnly {
			first = ext.WhiteSpaceOnly
		} else {
			gap := lastDepth + ext.Height
			if gap < p.BaseLineSkip {
				extra := p.BaseLineSkip - gap
				vbox.Contents = append(vbox.Contents, Kern(extra))
			}
		}
		vbox.Contents = append(vbox.Contents, child)

		if ext.Width > vbox.Width && !ext.WhiteSpaceOnly {
			vbox.Width = ext.Width
		}

		lastDepth = ext.Depth
	}
	vbox.Height = total - lastDepth
	vbox.Depth = lastDepth
	return vbox
}

// Walk calls fn for every child of the box.
func (obj *vBox) Walk(fn func(Box)) {
	for _, child := range obj.Contents {
		fn(child)
	}
}

// Draw implements the Box interface.
// Overfull boxes are drawn at their natural size, extending below the
// bottom of the box.
func (obj *vBox) Draw(page *layout.Page, xPos, yPos float64) {
	boxTotal := obj.Depth + obj.Height
	contentsTotal := 0.0
	for _, child := range obj.Contents {
		ext := child.Extent()
		contentsTotal += ext.Depth + ext.Height
	}
	contents := obj.Contents
	if contentsTotal < boxTotal-1e-3 {
		contents = stretchList(contents, boxTotal-contentsTotal, heightOf)
	} else if contentsTotal > boxTotal+1e-3 {
		contents = shrinkList(contents, contentsTotal-boxTotal, heightOf)
	}

	y := yPos + obj.Height
	for _, child := range contents {
		ext := child.Extent()
		y -= ext.Height
		child.Draw(page, xPos, y)
		y -= ext.Depth
	}
}
