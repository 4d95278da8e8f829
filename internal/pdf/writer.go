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

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/klauspost/compress/zlib"
)

// Writer writes a PDF file sequentially.  Objects are written in the
// order in which Put and OpenStream are called; references may point to
// objects which are written later.
type Writer struct {
	ver     Version
	w       *posWriter
	nextRef uint32
	xref    map[uint32]int64

	inStream bool
}

// NewWriter prepares a PDF file for writing.
func NewWriter(w io.Writer, ver Version) (*Writer, error) {
	verString, err := ver.ToString()
	if err != nil {
		return nil, err
	}

	pdf := &Writer{
		ver:     ver,
		w:       &posWriter{w: w},
		nextRef: 1,
		xref:    make(map[uint32]int64),
	}

	_, err = fmt.Fprintf(pdf.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", verString)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Version returns the PDF version of the file being written.
func (pdf *Writer) Version() Version {
	return pdf.ver
}

// Alloc allocates an object number for an indirect object.
func (pdf *Writer) Alloc() Reference {
	res := NewReference(pdf.nextRef, 0)
	pdf.nextRef++
	return res
}

// Put writes obj as the indirect object ref.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.inStream {
		return errStreamOpen
	}
	if _, seen := pdf.xref[ref.Number()]; seen {
		return errAlreadyWritten
	}
	if obj == nil {
		return nil
	}

	pos := pdf.w.pos
	_, err := fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err != nil {
		return err
	}
	err = obj.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\nendobj\n")
	if err != nil {
		return err
	}
	pdf.xref[ref.Number()] = pos
	return nil
}

// OpenStream starts writing the stream object ref.  The data written to
// the returned io.WriteCloser is encoded with the given filters, in order.
// The /Length, /Filter and /DecodeParms entries of dict are filled in
// automatically.  The stream is written to the file when the returned
// object is closed.  No other objects can be written while a stream is
// open.
func (pdf *Writer) OpenStream(ref Reference, dict Dict, filters ...Filter) (io.WriteCloser, error) {
	if pdf.inStream {
		return nil, errStreamOpen
	}
	if _, seen := pdf.xref[ref.Number()]; seen {
		return nil, errAlreadyWritten
	}

	res := &streamWriter{
		parent: pdf,
		ref:    ref,
		dict:   Dict{},
	}
	for key, val := range dict {
		res.dict[key] = val
	}

	var w io.WriteCloser = nopCloser{&res.buf}
	var names Array
	var parms Array
	hasParms := false
	for i := len(filters) - 1; i >= 0; i-- {
		name, parm := filters[i].Info()
		names = append(Array{name}, names...)
		if parm != nil {
			hasParms = true
			parms = append(Array{parm}, parms...)
		} else {
			parms = append(Array{nil}, parms...)
		}
		enc, err := filters[i].Encode(w)
		if err != nil {
			return nil, err
		}
		w = enc
	}
	switch len(names) {
	case 0:
	case 1:
		res.dict["Filter"] = names[0]
		if hasParms {
			res.dict["DecodeParms"] = parms[0]
		}
	default:
		res.dict["Filter"] = names
		if hasParms {
			res.dict["DecodeParms"] = parms
		}
	}
	res.w = w

	pdf.inStream = true
	return res, nil
}

type streamWriter struct {
	parent *Writer
	ref    Reference
	dict   Dict
	buf    bytes.Buffer
	w      io.WriteCloser
}

func (s *streamWriter) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, errStreamClosed
	}
	return s.w.Write(p)
}

func (s *streamWriter) Close() error {
	if s.w == nil {
		return errStreamClosed
	}
	err := s.w.Close()
	s.w = nil
	s.parent.inStream = false
	if err != nil {
		return err
	}

	pdf := s.parent
	s.dict["Length"] = Integer(s.buf.Len())

	pos := pdf.w.pos
	_, err = fmt.Fprintf(pdf.w, "%d %d obj\n", s.ref.Number(), s.ref.Generation())
	if err != nil {
		return err
	}
	err = s.dict.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\nstream\n")
	if err != nil {
		return err
	}
	_, err = pdf.w.Write(s.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\nendstream\nendobj\n")
	if err != nil {
		return err
	}
	pdf.xref[s.ref.Number()] = pos
	return nil
}

// Close writes the cross-reference table and the trailer.  The trailer
// must contain the /Root entry; the /Size entry is filled in
// automatically.  The underlying io.Writer is not closed.
func (pdf *Writer) Close(trailer Dict) error {
	if pdf.inStream {
		return errStreamOpen
	}
	if pdf.w == nil {
		return errors.New("pdf: writer already closed")
	}
	if _, ok := trailer["Root"].(Reference); !ok {
		return errors.New("pdf: missing /Root")
	}

	xRefDict := Dict{}
	for key, val := range trailer {
		xRefDict[key] = val
	}

	var err error
	var xRefPos int64
	if pdf.ver < V1_5 {
		xRefPos = pdf.w.pos
		err = pdf.writeXRefTable(xRefDict)
	} else {
		xRefPos, err = pdf.writeXRefStream(xRefDict)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "startxref\n%d\n%%%%EOF\n", xRefPos)
	pdf.w = nil
	return err
}

func (pdf *Writer) writeXRefTable(xRefDict Dict) error {
	xRefDict["Size"] = Integer(pdf.nextRef)

	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", pdf.nextRef)
	if err != nil {
		return err
	}
	for i := uint32(0); i < pdf.nextRef; i++ {
		if pos, ok := pdf.xref[i]; ok {
			_, err = fmt.Fprintf(pdf.w, "%010d 00000 n\r\n", pos)
		} else {
			// free object
			_, err = io.WriteString(pdf.w, "0000000000 65535 f\r\n")
		}
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(pdf.w, "trailer\n")
	if err != nil {
		return err
	}
	err = xRefDict.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\n")
	return err
}

// writeXRefStream writes the cross-reference information as a compressed
// stream.  The stream object itself is included in the table.
func (pdf *Writer) writeXRefStream(xRefDict Dict) (int64, error) {
	ref := pdf.Alloc()
	xRefPos := pdf.w.pos
	pdf.xref[ref.Number()] = xRefPos

	maxPos := int64(0)
	for _, pos := range pdf.xref {
		maxPos = max(maxPos, pos)
	}
	w2 := max((bits.Len64(uint64(maxPos))+7)/8, 1)

	data := &bytes.Buffer{}
	for i := uint32(0); i < pdf.nextRef; i++ {
		if pos, ok := pdf.xref[i]; ok {
			data.WriteByte(1)
			encodeInt(data, uint64(pos), w2)
			data.WriteByte(0)
		} else {
			data.WriteByte(0)
			encodeInt(data, 0, w2)
			data.WriteByte(0)
		}
	}

	xRefDict["Type"] = Name("XRef")
	xRefDict["Size"] = Integer(pdf.nextRef)
	xRefDict["W"] = Array{Integer(1), Integer(w2), Integer(1)}

	delete(pdf.xref, ref.Number())
	stm, err := pdf.OpenStream(ref, xRefDict, FilterFlate{})
	if err != nil {
		return 0, err
	}
	_, err = stm.Write(data.Bytes())
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return xRefPos, nil
}

func encodeInt(data *bytes.Buffer, x uint64, w int) {
	for i := w - 1; i >= 0; i-- {
		data.WriteByte(byte(x >> (i * 8)))
	}
}

// Filter is a PDF stream filter.
type Filter interface {
	// Info returns the filter name and the decode parameters.
	Info() (Name, Dict)

	// Encode returns a writer which encodes data and writes the result
	// to w.  Closing the returned writer must close w.
	Encode(w io.WriteCloser) (io.WriteCloser, error)
}

// FilterFlate is the FlateDecode filter.
type FilterFlate struct {
	// Level is the compression level.  The zero value selects the
	// default level.
	Level int
}

// Info implements the [Filter] interface.
func (f FilterFlate) Info() (Name, Dict) {
	return "FlateDecode", nil
}

// Encode implements the [Filter] interface.
func (f FilterFlate) Encode(w io.WriteCloser) (io.WriteCloser, error) {
	level := f.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, err
	}
	return &closeBoth{zw, w}, nil
}

// FilterDCT marks data which is already JPEG encoded.
type FilterDCT struct{}

// Info implements the [Filter] interface.
func (FilterDCT) Info() (Name, Dict) {
	return "DCTDecode", nil
}

// Encode implements the [Filter] interface.
func (FilterDCT) Encode(w io.WriteCloser) (io.WriteCloser, error) {
	return w, nil
}

type closeBoth struct {
	io.WriteCloser
	next io.Closer
}

func (c *closeBoth) Close() error {
	err := c.WriteCloser.Close()
	err2 := c.next.Close()
	if err == nil {
		err = err2
	}
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

var (
	errStreamOpen     = errors.New("pdf: a stream is open")
	errStreamClosed   = errors.New("pdf: stream already closed")
	errAlreadyWritten = errors.New("pdf: object already written")
)
