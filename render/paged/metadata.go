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

package paged

import (
	"strings"
	"time"

	"golang.org/x/text/language"

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/typeset/internal/pdf"
	"seehuhn.de/go/typeset/layout"
)

// metadata is the document information, after applying the options.
type metadata struct {
	title    string
	author   []string
	keywords []string
	date     time.Time
	producer string
}

func (e *encoder) metadata(doc *layout.Document) *metadata {
	opt := e.opt
	m := &metadata{
		title:    doc.Title,
		author:   doc.Author,
		keywords: doc.Keywords,
		date:     doc.Date,
		producer: opt.Producer,
	}
	if opt.Title != "" {
		m.title = opt.Title
	}
	if len(opt.Author) > 0 {
		m.author = opt.Author
	}
	if len(opt.Keywords) > 0 {
		m.keywords = opt.Keywords
	}
	if !opt.Date.IsZero() {
		m.date = opt.Date
	}
	if m.producer == "" {
		m.producer = DefaultProducer
	}
	return m
}

// infoDict returns the document information dictionary.
// See section 14.3.3 of PDF 32000-1:2008.
func (m *metadata) infoDict() pdf.Dict {
	info := pdf.Dict{
		"Producer": pdf.TextString(m.producer),
	}
	if m.title != "" {
		info["Title"] = pdf.TextString(m.title)
	}
	if len(m.author) > 0 {
		info["Author"] = pdf.TextString(strings.Join(m.author, ", "))
	}
	if len(m.keywords) > 0 {
		info["Keywords"] = pdf.TextString(strings.Join(m.keywords, ", "))
	}
	if !m.date.IsZero() {
		info["CreationDate"] = pdf.Date(m.date)
	}
	return info
}

// pdfNamespace is the XMP namespace for PDF metadata.
// See https://developer.adobe.com/xmp/docs/XMPNamespaces/pdf/
type pdfNamespace struct {
	_        xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_        xmp.Prefix    `xmp:"pdf"`
	Keywords xmp.Text
	Producer xmp.AgentName
}

// writeXMP writes the XMP metadata stream.  The XMP data duplicates the
// information dictionary.
func (e *encoder) writeXMP(m *metadata) (pdf.Reference, error) {
	dc := &xmp.DublinCore{}
	if m.title != "" {
		dc.Title.Set(language.Und, m.title)
	}
	for _, a := range m.author {
		dc.Creator.Append(xmp.NewProperName(a))
	}
	basic := &xmp.Basic{}
	if !m.date.IsZero() {
		basic.CreateDate = xmp.NewDate(m.date)
	}
	pdfInfo := &pdfNamespace{
		Producer: xmp.NewAgentName(m.producer),
	}
	if len(m.keywords) > 0 {
		pdfInfo.Keywords = xmp.NewText(strings.Join(m.keywords, ", "))
	}

	packet := xmp.NewPacket()
	err := packet.Set(dc, basic, pdfInfo)
	if err != nil {
		return 0, err
	}

	// metadata streams are stored uncompressed
	ref := e.out.Alloc()
	stm, err := e.out.OpenStream(ref, pdf.Dict{
		"Type":    pdf.Name("Metadata"),
		"Subtype": pdf.Name("XML"),
	})
	if err != nil {
		return 0, err
	}
	err = packet.Write(stm, &xmp.PacketOptions{Pretty: true})
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return ref, nil
}
