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

// Package markup implements a small line-oriented document compiler.
//
// Each line of a document is either text, a heading, a comment or a
// directive:
//
//	= Heading                   a heading, "==" for a sub-heading
//	// comment                  ignored
//	#set page(width: 10cm, height: 10cm, margin: 1cm, fill: none, numbering: true)
//	#set text(font: "Go Mono", size: 11pt, fill: rgb("#000000"), weight: "bold", style: "italic")
//	#set par(justify: true, leading: 1.3)
//	#set document(title: "Title", author: "Name")
//	#include "chapter.typ"      also "@namespace/name:1.0.0"
//	#image("figure.png", width: 5cm)
//	#rect(width: 2cm, height: 1cm, fill: red)
//	#v(1cm)
//	#pagebreak()
//
// Consecutive text lines form a paragraph, paragraphs are separated by
// empty lines.  Within text, #datetime.today() and
// #datetime.today(offset: N) are replaced by the current date.
package markup

import (
	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/engine"
	"seehuhn.de/go/typeset/layout"
)

// DefaultStyle gives the initial settings of every document: A4 paper
// with 2.5cm margins and 11pt text.
var DefaultStyle = engine.Defaults{
	PageWidth:  595.276,
	PageHeight: 841.89,
	Margin:     70.866,
	FontFamily: "Go",
	FontSize:   11,
	Leading:    1.3,
}

// functions lists the directives understood by the compiler.
var functions = []string{
	"datetime",
	"image",
	"include",
	"pagebreak",
	"rect",
	"set",
	"v",
}

// Compiler is the markup compiler.
// A Compiler has no mutable state and can be used concurrently.
type Compiler struct {
	lib *engine.Library
}

// New returns a new markup compiler.
func New() *Compiler {
	return &Compiler{
		lib: engine.NewLibrary(functions, DefaultStyle),
	}
}

// Library returns the standard library of the compiler.
func (c *Compiler) Library() *engine.Library {
	return c.lib
}

// Compile implements the engine.Compiler interface.
func (c *Compiler) Compile(w engine.World) (*layout.Document, []*diag.Diagnostic) {
	st := newState(w)

	main := w.Main()
	src, err := w.Source(main)
	if err != nil {
		return nil, []*diag.Diagnostic{diag.Errorf(diag.Detached, "%s", err)}
	}
	st.run(src)

	if diag.HasErrors(st.diags) {
		return nil, st.diags
	}
	return st.finish(), st.diags
}
