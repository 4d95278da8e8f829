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

package markup

import (
	"image/color"
	"strconv"
	"strings"

	"seehuhn.de/go/typeset/boxes"
	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/engine"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/source"
)

type textStyle struct {
	family  string
	size    float64
	fill    color.Color
	variant fonts.Variant
}

type pageStyle struct {
	width, height, margin float64
	fill                  color.Color
	numbering             bool
}

// state holds the progress of a single compilation.
type state struct {
	w     engine.World
	diags []*diag.Diagnostic

	text    textStyle
	page    pageStyle
	justify bool
	leading float64

	pager *boxes.Pager

	par     boxes.Paragraph
	parSize float64

	title  string
	author []string

	// files currently being processed, innermost last
	stack []files.ID

	fonts       map[textStyle]*fonts.Font
	badFamilies map[string]bool
}

func newState(w engine.World) *state {
	d := w.Library().Defaults
	st := &state{
		w: w,
		text: textStyle{
			family:  d.FontFamily,
			size:    d.FontSize,
			fill:    color.Black,
			variant: fonts.DefaultVariant,
		},
		page: pageStyle{
			width:  d.PageWidth,
			height: d.PageHeight,
			margin: d.Margin,
			fill:   color.White,
		},
		leading:     d.Leading,
		fonts:       make(map[textStyle]*fonts.Font),
		badFamilies: make(map[string]bool),
	}
	st.pager = boxes.NewPager(st.pageStyle())
	return st
}

func (st *state) errorf(file files.ID, start, end int, format string, a ...any) *diag.Diagnostic {
	d := diag.Errorf(diag.Span{File: file, Start: start, End: end}, format, a...)
	st.diags = append(st.diags, d)
	return d
}

func (st *state) warnf(file files.ID, start, end int, format string, a ...any) {
	d := diag.Warningf(diag.Span{File: file, Start: start, End: end}, format, a...)
	st.diags = append(st.diags, d)
}

// run processes all lines of a source file.
func (st *state) run(src *source.Source) {
	st.stack = append(st.stack, src.ID())
	defer func() { st.stack = st.stack[:len(st.stack)-1] }()

	for i := range src.LineCount() {
		st.line(src.ID(), src.Line(i), src.LineStart(i))
	}
}

func (st *state) line(file files.ID, line string, offset int) {
	trimmed := strings.TrimLeft(line, " \t")
	offset += len(line) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, " \t")

	switch {
	case trimmed == "":
		st.endParagraph()
	case strings.HasPrefix(trimmed, "//"):
		// comment
	case strings.HasPrefix(trimmed, "="):
		level := len(trimmed) - len(strings.TrimLeft(trimmed, "="))
		rest := trimmed[level:]
		if rest != "" && rest[0] != ' ' {
			st.addText(file, trimmed, offset)
			return
		}
		st.heading(file, level, strings.TrimLeft(rest, " "), offset+len(trimmed)-len(strings.TrimLeft(rest, " ")))
	case strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#datetime"):
		st.directive(file, trimmed, offset)
	default:
		st.addText(file, trimmed, offset)
	}
}

// addText adds the words of a text line to the current paragraph.
func (st *state) addText(file files.ID, text string, offset int) {
	text = st.expand(file, text, offset)
	F := st.font(file, offset, offset+len(text))
	if F == nil {
		return
	}
	size := st.text.size
	space := F.Advance(" ", size)
	if space <= 0 {
		space = size / 4
	}
	for _, word := range strings.Fields(text) {
		st.par.AddWord(
			boxes.Text(F, size, st.text.fill, word),
			boxes.Glue(space, space/2, 0, space/3, 0),
		)
	}
	st.parSize = max(st.parSize, size)
}

// expand replaces the inline date functions in a text line.
func (st *state) expand(file files.ID, text string, offset int) string {
	const marker = "#datetime.today"

	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(text[pos:], marker)
		if idx < 0 {
			break
		}
		start := pos + idx
		b.WriteString(text[pos:start])

		s := &scanner{line: text, pos: start + len(marker), base: offset}
		args, err := s.args()
		if err != nil {
			st.errorf(file, err.start, err.end, "%s", err.msg)
			return text
		}
		pos = s.pos

		var hours *int
		for _, a := range args {
			if a.name != "offset" {
				st.errorf(file, a.start, a.end, "unexpected argument")
				continue
			}
			x, err := a.val.number()
			if err != nil || x != float64(int(x)) {
				st.errorf(file, a.val.start, a.val.end, "offset must be an integer")
				continue
			}
			h := int(x)
			hours = &h
		}
		date, ok := st.w.Today(hours)
		if !ok {
			st.errorf(file, offset+start, offset+pos, "date is out of range")
			continue
		}
		b.WriteString(date.String())
	}
	b.WriteString(text[pos:])
	return b.String()
}

// endParagraph breaks the current paragraph into lines and sends them to
// the pager.
func (st *state) endParagraph() {
	if st.par.IsEmpty() {
		return
	}
	size := st.parSize
	lines := st.par.Lines(st.pager.Style().TextWidth(), st.justify)
	for _, line := range lines {
		st.pager.Add(line, st.leading*size)
	}
	st.pager.Add(boxes.Kern(0.6*size), 0)

	st.par = boxes.Paragraph{}
	st.parSize = 0
}

func (st *state) heading(file files.ID, level int, text string, offset int) {
	st.endParagraph()

	saved := st.text
	scale := 1.4
	if level > 1 {
		scale = 1.2
	}
	st.text.size *= scale
	st.text.variant.Weight = 700
	st.pager.Add(boxes.Kern(0.5*st.text.size), 0)
	st.addText(file, text, offset)
	st.endParagraph()
	st.text = saved
}

// font returns the font for the current text style.
func (st *state) font(file files.ID, start, end int) *fonts.Font {
	key := st.text
	key.fill = nil
	key.size = 0
	if F, ok := st.fonts[key]; ok {
		return F
	}

	book := st.w.Book()
	idx, ok := book.Select(st.text.family, st.text.variant)
	if !ok {
		if !st.badFamilies[st.text.family] {
			st.badFamilies[st.text.family] = true
			st.warnf(file, start, end, "unknown font family %q", st.text.family)
		}
		idx, ok = book.Select(st.w.Library().Defaults.FontFamily, st.text.variant)
	}
	if !ok {
		idx = 0
	}
	F, ok := st.w.Font(idx)
	if !ok {
		st.errorf(file, start, end, "no fonts available")
		return nil
	}
	st.fonts[key] = F
	return F
}

func (st *state) pageStyle() boxes.PageStyle {
	p := st.page
	style := boxes.PageStyle{
		Width:        p.width,
		Height:       p.height,
		TopMargin:    p.margin,
		RightMargin:  p.margin,
		BottomMargin: p.margin,
		LeftMargin:   p.margin,
		Fill:         p.fill,
	}
	if p.numbering {
		F := st.font(st.w.Main(), 0, 0)
		size := 0.9 * st.text.size
		fill := st.text.fill
		if F != nil {
			style.Footer = boxes.PageNumber(func(pageNo int) boxes.Box {
				return boxes.Text(F, size, fill, strconv.Itoa(pageNo))
			})
		}
	}
	return style
}

func (st *state) finish() *layout.Document {
	st.endParagraph()
	return &layout.Document{
		Pages:  st.pager.Finish(),
		Title:  st.title,
		Author: st.author,
	}
}
