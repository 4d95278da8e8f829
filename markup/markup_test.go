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
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/engine"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/source"
)

// testWorld serves files from memory.
type testWorld struct {
	lib     *engine.Library
	reg     *fonts.Registry
	main    files.ID
	text    map[files.ID]string
	binary  map[files.ID][]byte
	date    engine.Date
	offsets []*int
}

func newTestWorld(main string) *testWorld {
	return &testWorld{
		lib:    New().Library(),
		reg:    fonts.NewRegistry(),
		main:   files.NewID(nil, "/main.typ"),
		text:   map[files.ID]string{files.NewID(nil, "/main.typ"): main},
		binary: map[files.ID][]byte{},
		date:   engine.Date{Year: 2024, Month: 5, Day: 6},
	}
}

func (w *testWorld) Library() *engine.Library { return w.lib }
func (w *testWorld) Book() *fonts.Book        { return w.reg.Book() }
func (w *testWorld) Main() files.ID           { return w.main }

func (w *testWorld) Source(id files.ID) (*source.Source, error) {
	text, ok := w.text[id]
	if !ok {
		return nil, &files.Error{Kind: files.NotFound, Path: id.String()}
	}
	return source.New(id, text), nil
}

func (w *testWorld) File(id files.ID) ([]byte, error) {
	data, ok := w.binary[id]
	if !ok {
		return nil, &files.Error{Kind: files.NotFound, Path: id.String()}
	}
	return data, nil
}

func (w *testWorld) Font(i int) (*fonts.Font, bool) { return w.reg.Font(i) }

func (w *testWorld) Today(offset *int) (engine.Date, bool) {
	w.offsets = append(w.offsets, offset)
	if offset != nil && *offset > 1000 {
		return engine.Date{}, false
	}
	return w.date, true
}

func compile(t *testing.T, w *testWorld) *layout.Document {
	t.Helper()
	doc, list := New().Compile(w)
	if doc == nil {
		t.Fatalf("compilation failed: %v", diag.Format(list, nil))
	}
	return doc
}

func compileFail(t *testing.T, w *testWorld) []*diag.Diagnostic {
	t.Helper()
	doc, list := New().Compile(w)
	if doc != nil {
		t.Fatal("compilation succeeded unexpectedly")
	}
	if !diag.HasErrors(list) {
		t.Fatal("failure without error diagnostics")
	}
	return list
}

func texts(doc *layout.Document) []string {
	var res []string
	for _, p := range doc.Pages {
		for _, item := range p.Items {
			if txt, ok := item.(*layout.Text); ok {
				res = append(res, txt.Text)
			}
		}
	}
	return res
}

func TestSimpleText(t *testing.T) {
	doc := compile(t, newTestWorld("Hello, world!\n"))
	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages", len(doc.Pages))
	}
	p := doc.Pages[0]
	if math.Abs(p.Width-DefaultStyle.PageWidth) > 1e-9 || math.Abs(p.Height-DefaultStyle.PageHeight) > 1e-9 {
		t.Errorf("wrong page size %gx%g", p.Width, p.Height)
	}
	if layout.NRGBA(p.Fill) != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("page is not white")
	}
	if d := cmp.Diff([]string{"Hello,", "world!"}, texts(doc)); d != "" {
		t.Errorf("unexpected text (-want +got):\n%s", d)
	}
	first := p.Items[0].(*layout.Text)
	if math.Abs(first.Pos.X-DefaultStyle.Margin) > 1e-9 {
		t.Errorf("text starts at x=%g", first.Pos.X)
	}
	if first.Size != DefaultStyle.FontSize {
		t.Errorf("wrong font size %g", first.Size)
	}
}

func TestEmptyDocument(t *testing.T) {
	doc := compile(t, newTestWorld(""))
	if len(doc.Pages) != 1 || len(doc.Pages[0].Items) != 0 {
		t.Errorf("empty document gave %d pages", len(doc.Pages))
	}
}

func TestSetPage(t *testing.T) {
	doc := compile(t, newTestWorld("#set page(width: 10cm, height: 5cm, margin: 1cm, fill: none)\nx\n"))
	p := doc.Pages[0]
	if math.Abs(p.Width-10/2.54*72) > 1e-9 || math.Abs(p.Height-5/2.54*72) > 1e-9 {
		t.Errorf("wrong page size %gx%g", p.Width, p.Height)
	}
	if p.Fill != nil {
		t.Errorf("page fill is %v", p.Fill)
	}
}

func TestComments(t *testing.T) {
	doc := compile(t, newTestWorld("// a comment\n  visible\n"))
	if d := cmp.Diff([]string{"visible"}, texts(doc)); d != "" {
		t.Errorf("unexpected text (-want +got):\n%s", d)
	}
}

func TestUnknownDirective(t *testing.T) {
	w := newTestWorld("text\n#frobnicate(1)\n")
	list := compileFail(t, w)
	d := list[0]
	want := diag.Span{File: w.main, Start: 5, End: 16}
	if d.Span != want {
		t.Errorf("wrong span %+v, want %+v", d.Span, want)
	}
	if !strings.Contains(d.Message, "frobnicate") {
		t.Errorf("unexpected message %q", d.Message)
	}
	if len(d.Hints) == 0 {
		t.Error("missing hint")
	}
}

func TestMalformedArguments(t *testing.T) {
	cases := []string{
		"#v(1xx)",
		"#v(3)",
		"#v(1cm",
		"#set page(width: \"wide\")",
		"#set page(10cm)",
		"#set text(fill: rgb(\"#12\"))",
		"#set text(weight: \"heavyish\")",
		"#set nothing(x: 1pt)",
		"#rect(width: 1cm) trailing",
		"#pagebreak(1)",
		"#set page(width: 2cm, margin: 1cm)",
	}
	for _, c := range cases {
		doc, list := New().Compile(newTestWorld(c + "\n"))
		if doc != nil || !diag.HasErrors(list) {
			t.Errorf("%q: no error reported", c)
		}
	}
}

func TestInclude(t *testing.T) {
	w := newTestWorld("before\n#include \"chapters/one.typ\"\nafter\n")
	w.text[files.NewID(nil, "/chapters/one.typ")] = "inside\n#include \"../two.typ\"\n"
	w.text[files.NewID(nil, "/two.typ")] = "deeper\n"

	doc := compile(t, w)
	want := []string{"before", "inside", "deeper", "after"}
	if d := cmp.Diff(want, texts(doc)); d != "" {
		t.Errorf("unexpected text (-want +got):\n%s", d)
	}
}

func TestIncludePackage(t *testing.T) {
	w := newTestWorld("#include \"@preview/hello:0.1.0\"\n")
	spec, _ := files.ParsePackageSpec("@preview/hello:0.1.0")
	w.text[files.NewID(&spec, "/lib.typ")] = "from package\n"

	doc := compile(t, w)
	want := []string{"from", "package"}
	if d := cmp.Diff(want, texts(doc)); d != "" {
		t.Errorf("unexpected text (-want +got):\n%s", d)
	}
}

func TestIncludeErrors(t *testing.T) {
	w := newTestWorld("#include \"a.typ\"\n")
	w.text[files.NewID(nil, "/a.typ")] = "#include \"main.typ\"\n"
	list := compileFail(t, w)
	if !strings.Contains(list[0].Message, "cyclic include") {
		t.Errorf("unexpected message %q", list[0].Message)
	}
	if list[0].Span.File != files.NewID(nil, "/a.typ") {
		t.Errorf("error reported in %s", list[0].Span.File)
	}

	w = newTestWorld("#include \"missing.typ\"\n")
	list = compileFail(t, w)
	if !strings.Contains(list[0].Message, "file not found") {
		t.Errorf("unexpected message %q", list[0].Message)
	}
	if list[0].Span.Start != 9 || list[0].Span.End != 22 {
		t.Errorf("wrong span %+v", list[0].Span)
	}
}

func TestToday(t *testing.T) {
	w := newTestWorld("Today is #datetime.today(). Later #datetime.today(offset: -5)!\n")
	doc := compile(t, w)
	want := []string{"Today", "is", "2024-05-06.", "Later", "2024-05-06!"}
	if d := cmp.Diff(want, texts(doc)); d != "" {
		t.Errorf("unexpected text (-want +got):\n%s", d)
	}
	if len(w.offsets) != 2 || w.offsets[0] != nil || w.offsets[1] == nil || *w.offsets[1] != -5 {
		t.Errorf("unexpected offsets %v", w.offsets)
	}

	w = newTestWorld("#datetime.today(offset: 5000)\n")
	compileFail(t, w)
}

func TestImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	w := newTestWorld("#image(\"img/dot.png\", width: 4cm)\n")
	w.binary[files.NewID(nil, "/img/dot.png")] = buf.Bytes()
	doc := compile(t, w)

	var found *layout.Image
	for _, item := range doc.Pages[0].Items {
		if im, ok := item.(*layout.Image); ok {
			found = im
		}
	}
	if found == nil {
		t.Fatal("no image on page")
	}
	wd := found.Rect.URx - found.Rect.LLx
	ht := found.Rect.URy - found.Rect.LLy
	if math.Abs(wd-4/2.54*72) > 1e-9 || math.Abs(ht-2/2.54*72) > 1e-9 {
		t.Errorf("wrong image size %gx%g", wd, ht)
	}
	if found.Format != "png" || !bytes.Equal(found.Data, buf.Bytes()) {
		t.Errorf("wrong image data, format %q", found.Format)
	}
}

func TestBadImage(t *testing.T) {
	w := newTestWorld("#image(\"x.png\")\n")
	w.binary[files.NewID(nil, "/x.png")] = []byte("not an image")
	list := compileFail(t, w)
	if !strings.Contains(list[0].Message, "decode") {
		t.Errorf("unexpected message %q", list[0].Message)
	}

	w = newTestWorld("#image(\"missing.png\")\n")
	compileFail(t, w)
}

func TestPagebreak(t *testing.T) {
	doc := compile(t, newTestWorld("one\n#pagebreak()\ntwo\n#pagebreak()\n"))
	if len(doc.Pages) != 2 {
		t.Errorf("got %d pages", len(doc.Pages))
	}
}

func TestPagination(t *testing.T) {
	var b strings.Builder
	b.WriteString("#set page(width: 10cm, height: 10cm, margin: 1cm, numbering: true)\n")
	for range 60 {
		b.WriteString("line\n\n")
	}
	doc := compile(t, newTestWorld(b.String()))
	if len(doc.Pages) < 2 {
		t.Fatalf("got %d pages", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		pageNo := strconv.Itoa(i + 1)
		numbered := false
		for _, item := range p.Items {
			txt := item.(*layout.Text)
			if txt.Pos.Y < 0 || txt.Pos.Y > p.Height {
				t.Errorf("page %d: text outside the page at y=%g", i+1, txt.Pos.Y)
			}
			if txt.Text == pageNo {
				numbered = true
			}
		}
		if !numbered {
			t.Errorf("page %d has no page number", i+1)
		}
	}
}

func TestHeading(t *testing.T) {
	doc := compile(t, newTestWorld("= Title\nbody\n"))
	items := doc.Pages[0].Items
	heading := items[0].(*layout.Text)
	body := items[1].(*layout.Text)
	if heading.Text != "Title" || math.Abs(heading.Size-1.4*DefaultStyle.FontSize) > 1e-9 {
		t.Errorf("unexpected heading %q at size %g", heading.Text, heading.Size)
	}
	if heading.Font.Info().Weight <= body.Font.Info().Weight {
		t.Error("heading is not bold")
	}
	if body.Pos.Y >= heading.Pos.Y {
		t.Error("body is not below the heading")
	}
}

func TestUnknownFont(t *testing.T) {
	w := newTestWorld("#set text(font: \"No Such Font\")\nhello\n")
	doc, list := New().Compile(w)
	if doc == nil {
		t.Fatal("compilation failed")
	}
	if len(list) != 1 || list[0].Severity != diag.SeverityWarning {
		t.Errorf("expected one warning, got %v", list)
	}
}

func TestSetDocument(t *testing.T) {
	doc := compile(t, newTestWorld("#set document(title: \"T\", author: \"A. Author\")\n"))
	if doc.Title != "T" || len(doc.Author) != 1 || doc.Author[0] != "A. Author" {
		t.Errorf("wrong metadata %q %q", doc.Title, doc.Author)
	}
}

func TestRect(t *testing.T) {
	doc := compile(t, newTestWorld("#rect(width: 2cm, height: 1cm, fill: rgb(\"#ff000080\"))\n"))
	r := doc.Pages[0].Items[0].(*layout.Rect)
	if got := layout.NRGBA(r.Fill); got != (color.NRGBA{255, 0, 0, 128}) {
		t.Errorf("wrong fill %v", got)
	}
	if math.Abs(r.Rect.URx-r.Rect.LLx-2/2.54*72) > 1e-9 {
		t.Errorf("wrong width")
	}
}
