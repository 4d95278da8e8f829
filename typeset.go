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

// Package typeset compiles documents and converts the result into SVG
// images, PDF files or pixel buffers.
//
// A Compiler combines a compilation world, which obtains files, packages
// and fonts through a host, with the output backends:
//
//	c := typeset.New("/", h, nil)
//	svg, err := c.CompileSVG(text, "/main.typ")
//
// Compilation failures are reported as *diag.Error, failures to read the
// main file as *files.Error.
package typeset

import (
	"seehuhn.de/go/typeset/host"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render/paged"
	"seehuhn.de/go/typeset/render/raster"
	"seehuhn.de/go/typeset/render/svg"
	"seehuhn.de/go/typeset/world"
)

// Compiler compiles documents and renders the results.
//
// Calls on the same Compiler must not overlap.
type Compiler struct {
	world   *world.World
	resizer *raster.Resizer
}

// New creates a Compiler for the project at root.  Files and packages are
// requested from h.  If opt is nil, default options are used.
func New(root string, h host.Host, opt *world.Options) *Compiler {
	return &Compiler{
		world:   world.New(root, h, opt),
		resizer: raster.NewResizer(nil),
	}
}

// World returns the compilation world used by c.
func (c *Compiler) World() *world.World {
	return c.world
}

// Compile compiles text as the content of the file at path.
func (c *Compiler) Compile(text, path string) (*layout.Document, error) {
	return c.world.Compile(text, path)
}

// CompileFile compiles the file at path, which is read through the host.
func (c *Compiler) CompileFile(path string) (*layout.Document, error) {
	return c.world.CompileFile(path)
}

// CompileSVG compiles text and returns the first page as an SVG image.
func (c *Compiler) CompileSVG(text, path string) (string, error) {
	doc, err := c.world.Compile(text, path)
	if err != nil {
		return "", err
	}
	return svg.Render(doc)
}

// CompilePDF compiles text and returns the document as a PDF file.
// If opt is nil, default options are used.
func (c *Compiler) CompilePDF(text, path string, opt *paged.Options) ([]byte, error) {
	doc, err := c.world.Compile(text, path)
	if err != nil {
		return nil, err
	}
	return paged.Render(doc, opt)
}

// CompileImage compiles text and returns the first page as a pixel
// buffer.  The arguments scale, fill, size and byWidth are as for
// raster.Render.
func (c *Compiler) CompileImage(text, path string, scale float64, fill string, size int, byWidth bool) (*raster.Pixmap, error) {
	doc, err := c.world.Compile(text, path)
	if err != nil {
		return nil, err
	}
	return raster.Render(c.resizer, doc, scale, fill, size, byWidth)
}

// AddFont adds the faces in a font file to the font registry and returns
// the number of faces added.
func (c *Compiler) AddFont(data []byte) int {
	return c.world.AddFont(data)
}

// ResetFonts removes all fonts added by AddFont.
func (c *Compiler) ResetFonts() {
	c.world.ResetFonts()
}
