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

// Package paged renders laid-out documents as PDF files.
//
// Fonts are embedded as simple TrueType (or, from PDF 1.6, OpenType) fonts
// with WinAnsi encoding.  Characters outside the WinAnsi character set are
// replaced by question marks.  JPEG images are embedded unchanged, all
// other images are stored as compressed RGB samples with an optional soft
// mask for transparency.
package paged

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"image"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/internal/pdf"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

// DefaultProducer is the default value of the /Producer entry.
const DefaultProducer = "seehuhn.de/go/typeset"

// Options can be used to control the PDF output.
// A nil pointer selects the defaults.
type Options struct {
	// Version is the PDF version to write, e.g. "1.7".  The default is
	// "1.7".
	Version string

	// Pages lists the (1-based) numbers of the pages to include.  If this
	// is empty, all pages are included.
	Pages []int

	// Title, Author and Keywords override the document metadata, if set.
	Title    string
	Author   []string
	Keywords []string

	// Date overrides the creation date of the document, if non-zero.
	Date time.Time

	// Producer is stored in the document metadata.  The default is
	// DefaultProducer.
	Producer string

	// Compress enables compression of content streams, images and font
	// files.  If Options is nil, compression is enabled.
	Compress bool

	// Logger receives debug messages.  The default discards all output.
	Logger *slog.Logger
}

var defaultOptions = &Options{Compress: true}

// FormatError is returned when a document cannot be converted to PDF.
type FormatError struct {
	Msg string
}

func (err *FormatError) Error() string {
	return "pdf export failed: " + err.Msg
}

func formatError(err error) error {
	var fe *FormatError
	if errors.As(err, &fe) || errors.Is(err, render.ErrEmptyDocument) {
		return err
	}
	return &FormatError{Msg: err.Error()}
}

// Render converts doc into a PDF file.
// Errors other than render.ErrEmptyDocument are of type *FormatError.
func Render(doc *layout.Document, opt *Options) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := Write(buf, doc, opt)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes doc as a PDF file to w.
// Errors other than render.ErrEmptyDocument are of type *FormatError.
func Write(w io.Writer, doc *layout.Document, opt *Options) error {
	if opt == nil {
		opt = defaultOptions
	}
	if doc == nil || len(doc.Pages) == 0 {
		return render.ErrEmptyDocument
	}

	pages, err := selectPages(doc, opt.Pages)
	if err != nil {
		return err
	}

	verString := opt.Version
	if verString == "" {
		verString = "1.7"
	}
	ver, err := pdf.ParseVersion(verString)
	if err != nil {
		return &FormatError{Msg: fmt.Sprintf("unsupported PDF version %q", verString)}
	}

	out, err := pdf.NewWriter(w, ver)
	if err != nil {
		return formatError(err)
	}
	e := newEncoder(out, opt)
	err = e.run(doc, pages)
	if err != nil {
		return formatError(err)
	}
	return nil
}

func selectPages(doc *layout.Document, numbers []int) ([]*layout.Page, error) {
	if len(numbers) == 0 {
		return doc.Pages, nil
	}
	res := make([]*layout.Page, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > len(doc.Pages) {
			return nil, &FormatError{
				Msg: fmt.Sprintf("page %d does not exist (document has %d pages)", n, len(doc.Pages)),
			}
		}
		res = append(res, doc.Pages[n-1])
	}
	return res, nil
}

// encoder holds the state while a document is written.
type encoder struct {
	out *pdf.Writer
	opt *Options
	log *slog.Logger

	filters []pdf.Filter

	fonts  map[*fonts.Font]*fontRes
	images map[image.Image]*imageRes

	// id accumulates the data used for the file identifier
	id hash.Hash
}

func newEncoder(out *pdf.Writer, opt *Options) *encoder {
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// blake2b.New only fails for invalid sizes or keys
	h, _ := blake2b.New(16, nil)
	e := &encoder{
		out:    out,
		opt:    opt,
		log:    logger,
		fonts:  make(map[*fonts.Font]*fontRes),
		images: make(map[image.Image]*imageRes),
		id:     h,
	}
	if opt.Compress {
		e.filters = []pdf.Filter{pdf.FilterFlate{}}
	}
	return e
}

func (e *encoder) run(doc *layout.Document, pages []*layout.Page) error {
	catalogRef := e.out.Alloc()
	pagesRef := e.out.Alloc()

	var kids pdf.Array
	for _, p := range pages {
		ref, err := e.writePage(p, pagesRef)
		if err != nil {
			return err
		}
		kids = append(kids, ref)
	}

	err := e.writeFonts()
	if err != nil {
		return err
	}

	err = e.out.Put(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(len(kids)),
	})
	if err != nil {
		return err
	}

	meta := e.metadata(doc)
	metaRef, err := e.writeXMP(meta)
	if err != nil {
		return err
	}
	infoRef := e.out.Alloc()
	err = e.out.Put(infoRef, meta.infoDict())
	if err != nil {
		return err
	}

	err = e.out.Put(catalogRef, pdf.Dict{
		"Type":     pdf.Name("Catalog"),
		"Pages":    pagesRef,
		"Metadata": metaRef,
	})
	if err != nil {
		return err
	}

	io.WriteString(e.id, meta.title)
	io.WriteString(e.id, strings.Join(meta.author, "\x00"))
	io.WriteString(e.id, meta.date.String())
	id := pdf.String(e.id.Sum(nil))

	return e.out.Close(pdf.Dict{
		"Root": catalogRef,
		"Info": infoRef,
		"ID":   pdf.Array{id, id},
	})
}

// writeStream writes a stream, compressed if enabled, and returns its
// reference.
func (e *encoder) writeStream(dict pdf.Dict, data []byte, filters ...pdf.Filter) (pdf.Reference, error) {
	ref := e.out.Alloc()
	stm, err := e.out.OpenStream(ref, dict, filters...)
	if err != nil {
		return 0, err
	}
	_, err = stm.Write(data)
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return ref, nil
}
