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

// Package render holds what the output backends in the subpackages have in
// common.
//
// The svg and raster backends render the first page of a document, the
// paged backend renders all pages into a PDF file.
package render

import (
	"errors"
	"image/color"

	"seehuhn.de/go/typeset/layout"
)

// ErrEmptyDocument is returned by all backends when a document has no
// pages.
var ErrEmptyDocument = errors.New("render: document has no pages")

// FirstPage returns the first page of doc.
func FirstPage(doc *layout.Document) (*layout.Page, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}
	return doc.Pages[0], nil
}

// Visible reports whether a colour paints anything.
func Visible(c color.Color) bool {
	if c == nil {
		return false
	}
	_, _, _, a := c.RGBA()
	return a > 0
}
