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

// Package engine defines the contract between a compilation world and a
// document compiler.
//
// The compiler receives a World and calls back into it for the main file,
// further files, fonts and the current date.  The calls are synchronous and
// may come from several goroutines.
package engine

import (
	"fmt"

	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/source"
)

// World is the environment of a single compilation.
type World interface {
	// Library returns the standard library of the compiler.
	Library() *Library

	// Book returns the description of the available fonts.
	Book() *fonts.Book

	// Main returns the identity of the root document.
	Main() files.ID

	// Source returns the text of a file.
	// Errors are of type *files.Error.
	Source(id files.ID) (*source.Source, error)

	// File returns the raw bytes of a file.
	// Errors are of type *files.Error.
	File(id files.ID) ([]byte, error)

	// Font returns the font at index i of the book.
	Font(i int) (*fonts.Font, bool)

	// Today returns the current date.  If offset is nil, the local time
	// zone is used, otherwise UTC shifted by the given number of hours.
	// The boolean result is false if the date cannot be represented.
	Today(offset *int) (Date, bool)
}

// Compiler turns the main file of a world into a laid-out document.
type Compiler interface {
	// Compile compiles the main file of w.  On success the document is
	// returned, possibly together with warnings.  On failure the document
	// is nil and the list contains at least one error.
	Compile(w World) (*layout.Document, []*diag.Diagnostic)
}

// CompilerFunc adapts an ordinary function to the Compiler interface.
type CompilerFunc func(w World) (*layout.Document, []*diag.Diagnostic)

// Compile implements the Compiler interface.
func (f CompilerFunc) Compile(w World) (*layout.Document, []*diag.Diagnostic) {
	return f(w)
}

// Date is a calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
