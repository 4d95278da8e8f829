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
	"bytes"
	"fmt"
	"image/color"

	"seehuhn.de/go/typeset/internal/pdf"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

// content collects the content stream and the resources of a page.
type content struct {
	buf bytes.Buffer

	fonts   pdf.Dict
	images  pdf.Dict
	gstates pdf.Dict
	alpha   map[uint8]pdf.Name

	fill    color.NRGBA
	hasFill bool
	ca      uint8
}

func newContent() *content {
	return &content{
		fonts:   pdf.Dict{},
		images:  pdf.Dict{},
		gstates: pdf.Dict{},
		alpha:   make(map[uint8]pdf.Name),
		ca:      255,
	}
}

func (c *content) printf(format string, args ...any) {
	fmt.Fprintf(&c.buf, format, args...)
}

func num(x float64) string {
	return pdf.FormatReal(x)
}

// setFill selects the fill colour, including its opacity.
func (c *content) setFill(col color.Color) {
	nc := layout.NRGBA(col)
	if !c.hasFill || nc.R != c.fill.R || nc.G != c.fill.G || nc.B != c.fill.B {
		c.printf("%s %s %s rg\n",
			num(float64(nc.R)/255), num(float64(nc.G)/255), num(float64(nc.B)/255))
		c.fill = nc
		c.hasFill = true
	}
	c.setAlpha(nc.A)
}

func (c *content) setAlpha(a uint8) {
	if a == c.ca {
		return
	}
	name, ok := c.alpha[a]
	if !ok {
		name = pdf.Name(fmt.Sprintf("G%d", len(c.alpha)+1))
		c.alpha[a] = name
		c.gstates[name] = pdf.Dict{
			"Type": pdf.Name("ExtGState"),
			"ca":   pdf.Real(float64(a) / 255),
		}
	}
	c.printf("/%s gs\n", name)
	c.ca = a
}

func (c *content) rect(x, y, w, h float64) {
	c.printf("%s %s %s %s re f\n", num(x), num(y), num(w), num(h))
}

// writePage writes a page object together with its content stream and
// returns the reference of the page object.
func (e *encoder) writePage(p *layout.Page, parent pdf.Reference) (pdf.Reference, error) {
	c := newContent()

	if render.Visible(p.Fill) {
		c.setFill(p.Fill)
		c.rect(0, 0, p.Width, p.Height)
	}

	for _, item := range p.Items {
		var err error
		switch item := item.(type) {
		case *layout.Rect:
			if !render.Visible(item.Fill) {
				continue
			}
			c.setFill(item.Fill)
			r := item.Rect
			c.rect(r.LLx, r.LLy, r.URx-r.LLx, r.URy-r.LLy)
		case *layout.Text:
			err = e.drawText(c, item)
		case *layout.Image:
			err = e.drawImage(c, item)
		}
		if err != nil {
			return 0, err
		}
	}

	data := c.buf.Bytes()
	e.id.Write(data)
	contentRef, err := e.writeStream(nil, data, e.filters...)
	if err != nil {
		return 0, err
	}

	resources := pdf.Dict{
		"ProcSet": pdf.Array{pdf.Name("PDF"), pdf.Name("Text"), pdf.Name("ImageC")},
	}
	if len(c.fonts) > 0 {
		resources["Font"] = c.fonts
	}
	if len(c.images) > 0 {
		resources["XObject"] = c.images
	}
	if len(c.gstates) > 0 {
		resources["ExtGState"] = c.gstates
	}

	pageRef := e.out.Alloc()
	err = e.out.Put(pageRef, pdf.Dict{
		"Type":      pdf.Name("Page"),
		"Parent":    parent,
		"MediaBox":  pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(p.Width), pdf.Real(p.Height)},
		"Resources": resources,
		"Contents":  contentRef,
	})
	if err != nil {
		return 0, err
	}
	return pageRef, nil
}

func (e *encoder) drawText(c *content, t *layout.Text) error {
	if t.Text == "" || !render.Visible(t.Fill) {
		return nil
	}
	res, err := e.font(t.Font)
	if err != nil {
		return err
	}
	c.fonts[res.name] = res.ref

	c.setFill(t.Fill)
	c.printf("BT\n/%s %s Tf\n%s %s Td\n", res.name, num(t.Size), num(t.Pos.X), num(t.Pos.Y))
	err = res.show(&c.buf, t.Text)
	if err != nil {
		return err
	}
	c.printf(" TJ\nET\n")
	return nil
}

func (e *encoder) drawImage(c *content, im *layout.Image) error {
	r := im.Rect
	w, h := r.URx-r.LLx, r.URy-r.LLy
	if w <= 0 || h <= 0 || im.Image == nil {
		return nil
	}
	res, err := e.image(im)
	if err != nil {
		return err
	}
	c.images[res.name] = res.ref

	c.setAlpha(255)
	c.printf("q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n", num(w), num(h), num(r.LLx), num(r.LLy), res.name)
	return nil
}
