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
	"fmt"
	"math"

	"seehuhn.de/go/dag"
)

// Paragraph is horizontal mode material: words separated by glue.
type Paragraph struct {
	hlist []Box
}

// AddWord appends a word to the paragraph.  Consecutive words are
// separated by the given inter-word glue.
func (par *Paragraph) AddWord(word Box, space Box) {
	if len(par.hlist) > 0 {
		par.hlist = append(par.hlist, space)
	}
	par.hlist = append(par.hlist, word)
}

// IsEmpty reports whether the paragraph contains no words.
func (par *Paragraph) IsEmpty() bool {
	return len(par.hlist) == 0
}

// Lines breaks the paragraph into lines of the given width.  The break
// points are chosen to minimise the total badness of all lines; the last
// line may be arbitrarily short.  If justify is set, all lines but the
// last are stretched to the full width.
func (par *Paragraph) Lines(textWidth float64, justify bool) []Box {
	if len(par.hlist) == 0 {
		return nil
	}

	g := &lineBreakGraph{
		hlist:     par.hlist,
		textWidth: textWidth,
	}
	ee, err := dag.ShortestPath[int, int](g, len(g.hlist))
	if err != nil {
		panic(fmt.Sprintf("boxes: line breaking failed: %v", err))
	}

	var lines []Box
	v := 0
	for _, e := range ee {
		line := g.hlist[v:e]
		if justify && e < len(g.hlist) {
			lines = append(lines, HBoxTo(textWidth, line...))
		} else {
			lines = append(lines, HBox(line...))
		}
		v = g.To(v, e)
	}
	return lines
}

// lineBreakGraph is the graph of possible line breaks.  Vertices are
// positions in the horizontal list where a line can start; an edge is the
// position of the glue where the line ends, or the end of the list.
type lineBreakGraph struct {
	hlist     []Box
	textWidth float64
}

// AppendEdges appends the feasible line ends for a line starting at v.
// The first break is always included, so that overfull lines are possible
// if no line fits.
func (g *lineBreakGraph) AppendEdges(ee []int, v int) []int {
	n := len(g.hlist)
	minWidth := 0.0
	found := false
	for pos := v; pos < n; pos++ {
		box := g.hlist[pos]
		ext := box.Extent()
		if _, isGlue := box.(*glue); isGlue && pos > v {
			if minWidth > g.textWidth && found {
				return ee
			}
			ee = append(ee, pos)
			found = true
			minWidth += ext.Width - box.(*glue).Minus.Val
			continue
		}
		minWidth += ext.Width
	}
	if minWidth <= g.textWidth || !found {
		ee = append(ee, n)
	}
	return ee
}

// Length returns the cost of a line from v to e.
func (g *lineBreakGraph) Length(v int, e int) int {
	var width, stretch, shrink float64
	for _, box := range g.hlist[v:e] {
		width += box.Extent().Width
		if gl, ok := box.(*glue); ok {
			stretch += gl.Plus.Val
			shrink += gl.Minus.Val
		}
	}

	absStretch := g.textWidth - width
	if e == len(g.hlist) && absStretch >= 0 {
		// the last line is filled with infinitely stretchable glue
		return 0
	}

	var q float64
	switch {
	case absStretch == 0:
		q = 0
	case absStretch > 0 && stretch > 0:
		q = absStretch / stretch
	case absStretch < 0 && shrink > 0:
		q = absStretch / shrink
	case absStretch > 0:
		q = 10
	default:
		q = -10
	}

	const linePenalty = 10
	if q < -1 {
		return 100_000 + int(-absStretch)
	}
	return linePenalty + int(math.Round(100*math.Min(math.Abs(q*q*q), 100)))
}

// To returns the start of the line following the break at e.
func (g *lineBreakGraph) To(v int, e int) int {
	pos := e
	for pos < len(g.hlist) && discardible(g.hlist[pos]) {
		pos++
	}
	return pos
}

func discardible(box Box) bool {
	_, isGlue := box.(*glue)
	return isGlue
}
