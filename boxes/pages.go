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
	"image/color"

	"seehuhn.de/go/typeset/layout"
)

// PageStyle describes the geometry of the pages produced by a Pager.
type PageStyle struct {
	Width, Height float64

	TopMargin, RightMargin, BottomMargin, LeftMargin float64

	// Fill is the background colour of the page, nil for transparent
	// pages.
	Fill color.Color

	// Footer, if set, returns the footer for the given page number.
	// The footer is placed inside the bottom margin.
	Footer func(pageNo int, textWidth float64) Box
}

// TextWidth returns the width of the area between the margins.
func (s PageStyle) TextWidth() float64 {
	return s.Width - s.LeftMargin - s.RightMargin
}

// TextHeight returns the height of the area between the margins.
func (s PageStyle) TextHeight() float64 {
	return s.Height - s.TopMargin - s.BottomMargin
}

// Pager breaks a stream of boxes into pages.
type Pager struct {
	style PageStyle
	p     Parameters

	body        []Box
	totalHeight float64
	lastDepth   float64
	pages       []*layout.Page
}

// NewPager creates a new Pager which produces pages of the given style.
func NewPager(style PageStyle) *Pager {
	return &Pager{style: style}
}

// Style returns the style used for the current page.
func (pg *Pager) Style() PageStyle {
	return pg.style
}

// SetStyle changes the page style.  If the current page already has
// content, a page break is inserted first.
func (pg *Pager) SetStyle(style PageStyle) {
	if len(pg.body) > 0 {
		pg.flush()
	}
	pg.style = style
}

// Add appends a box to the current page, starting a new page if the box
// does not fit.  If the box follows another box, additional space is
// inserted so that the distance between the baselines is at least
// baseLineSkip.  White space at the top of a page is discarded.
func (pg *Pager) Add(box Box, baseLineSkip float64) {
	ext := box.Extent()
	if ext.WhiteSpaceOnly {
		if len(pg.body) == 0 {
			return
		}
		pg.body = append(pg.body, box)
		pg.totalHeight += ext.Height + ext.Depth
		return
	}

	var skip float64
	if len(pg.body) > 0 {
		gap := pg.lastDepth + ext.Height
		if gap < baseLineSkip {
			skip = baseLineSkip - gap
		}
	}

	h := ext.Height + ext.Depth
	if len(pg.body) > 0 && pg.totalHeight+skip+h > pg.style.TextHeight() {
		pg.flush()
		skip = 0
	}
	if skip > 0 {
		pg.body = append(pg.body, Kern(skip))
	}
	pg.body = append(pg.body, box)
	pg.totalHeight += skip + h
	pg.lastDepth = ext.Depth
}

// Break ends the current page.  Nothing happens if the page is empty.
func (pg *Pager) Break() {
	if len(pg.body) > 0 {
		pg.flush()
	}
}

// Finish ends the current page and returns all pages.  At least one page
// is always returned.
func (pg *Pager) Finish() []*layout.Page {
	if len(pg.body) > 0 || len(pg.pages) == 0 {
		pg.flush()
	}
	return pg.pages
}

func (pg *Pager) flush() {
	s := &pg.style
	pageNo := len(pg.pages) + 1

	// drop trailing white space
	body := pg.body
	for len(body) > 0 && body[len(body)-1].Extent().WhiteSpaceOnly {
		body = body[:len(body)-1]
	}

	pageList := []Box{
		Kern(s.TopMargin),
	}
	pageList = append(pageList, body...)
	pageList = append(pageList, Glue(0, 1, 1, 0, 0))
	if s.Footer != nil {
		footer := s.Footer(pageNo, s.TextWidth())
		fExt := footer.Extent()
		pageList = append(pageList,
			Kern(max(s.BottomMargin/2-fExt.Height, 0)),
			footer,
			Kern(s.BottomMargin/2-fExt.Depth),
		)
	} else {
		pageList = append(pageList, Kern(s.BottomMargin))
	}
	pageBody := pg.p.VBoxTo(s.Height, pageList...)
	withMargins := HBoxTo(s.Width, Kern(s.LeftMargin), pageBody)

	page := layout.NewPage(s.Width, s.Height)
	page.Fill = s.Fill
	withMargins.Draw(page, 0, withMargins.Extent().Depth)
	pg.pages = append(pg.pages, page)

	pg.body = nil
	pg.totalHeight = 0
	pg.lastDepth = 0
}

// PageNumber returns a footer which shows the page number, centred.
func PageNumber(makeText func(pageNo int) Box) func(int, float64) Box {
	return func(pageNo int, textWidth float64) Box {
		return HBoxTo(textWidth,
			Glue(0, 1, 1, 0, 0),
			makeText(pageNo),
			Glue(0, 1, 1, 0, 0),
		)
	}
}
