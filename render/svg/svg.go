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

// Package svg renders laid-out pages as SVG documents.
//
// Text is emitted as <text> elements which refer to the fonts by family
// name, so the output only looks right where the fonts are installed.
// Images are embedded as data URIs.
package svg

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

// Class is the class attribute of the root element of every page.
const Class = "typeset-page"

// Render converts the first page of doc into an SVG document.
func Render(doc *layout.Document) (string, error) {
	page, err := render.FirstPage(doc)
	if err != nil {
		return "", err
	}
	return RenderPage(page), nil
}

// RenderPage converts a single page into an SVG document.
// The SVG user unit is one PDF point.
func RenderPage(p *layout.Page) string {
	w := &writer{height: p.Height}
	b := &w.b

	fmt.Fprintf(b, `<svg class="%s" xmlns="http://www.w3.org/2000/svg" width="%spt" height="%spt" viewBox="0 0 %s %s">`,
		Class, num(p.Width), num(p.Height), num(p.Width), num(p.Height))
	b.WriteByte('\n')

	if render.Visible(p.Fill) {
		fmt.Fprintf(b, `<rect class="typeset-background" width="%s" height="%s"%s/>`,
			num(p.Width), num(p.Height), fill(p.Fill))
		b.WriteByte('\n')
	}

	for _, item := range p.Items {
		switch item := item.(type) {
		case *layout.Text:
			w.text(item)
		case *layout.Rect:
			w.rect(item)
		case *layout.Image:
			w.image(item)
		}
	}

	b.WriteString("</svg>\n")
	return b.String()
}

type writer struct {
	b      strings.Builder
	height float64
}

func (w *writer) text(t *layout.Text) {
	if t.Text == "" || !render.Visible(t.Fill) {
		return
	}
	info := t.Font.Info()

	b := &w.b
	fmt.Fprintf(b, `<text x="%s" y="%s" font-family="`, num(t.Pos.X), num(w.height-t.Pos.Y))
	escape(b, family(info))
	fmt.Fprintf(b, `" font-size="%s"`, num(t.Size))
	if info.Weight != 400 {
		fmt.Fprintf(b, ` font-weight="%d"`, info.Weight)
	}
	if info.Style != fonts.Normal {
		fmt.Fprintf(b, ` font-style="%s"`, info.Style)
	}
	b.WriteString(fill(t.Fill))
	b.WriteString(` xml:space="preserve">`)
	escape(b, t.Text)
	b.WriteString("</text>\n")
}

func (w *writer) rect(r *layout.Rect) {
	if !render.Visible(r.Fill) {
		return
	}
	fmt.Fprintf(&w.b, `<rect x="%s" y="%s" width="%s" height="%s"%s/>`,
		num(r.Rect.LLx), num(w.height-r.Rect.URy),
		num(r.Rect.URx-r.Rect.LLx), num(r.Rect.URy-r.Rect.LLy),
		fill(r.Fill))
	w.b.WriteByte('\n')
}

func (w *writer) image(im *layout.Image) {
	uri := dataURI(im)
	if uri == "" {
		return
	}
	fmt.Fprintf(&w.b, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" href="%s"/>`,
		num(im.Rect.LLx), num(w.height-im.Rect.URy),
		num(im.Rect.URx-im.Rect.LLx), num(im.Rect.URy-im.Rect.LLy),
		uri)
	w.b.WriteByte('\n')
}

// mimeTypes lists the image formats which are embedded unchanged.
var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

func dataURI(im *layout.Image) string {
	mime, ok := mimeTypes[im.Format]
	data := im.Data
	if !ok || data == nil {
		if im.Image == nil {
			return ""
		}
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, im.Image); err != nil {
			return ""
		}
		mime = "image/png"
		data = buf.Bytes()
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// family returns the CSS font family list for a font.
func family(info fonts.Info) string {
	generic := "sans-serif"
	if strings.Contains(strings.ToLower(info.Family), "mono") {
		generic = "monospace"
	}
	if info.Family == "" {
		return generic
	}
	return "'" + info.Family + "', " + generic
}

// fill returns the fill attributes for a colour.
func fill(c color.Color) string {
	col := layout.NRGBA(c)
	res := fmt.Sprintf(` fill="#%02x%02x%02x"`, col.R, col.G, col.B)
	if col.A < 255 {
		res += ` fill-opacity="` + num(float64(col.A)/255) + `"`
	}
	return res
}

func escape(b *strings.Builder, s string) {
	// strings.Builder never fails
	_ = xml.EscapeText(b, []byte(s))
}

// num formats a coordinate with at most three decimals.
func num(x float64) string {
	s := strconv.FormatFloat(x, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}
