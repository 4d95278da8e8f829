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
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
)

func testDocument(t *testing.T) *layout.Document {
	t.Helper()
	F, ok := fonts.NewRegistry().Font(0)
	if !ok {
		t.Fatal("no fonts")
	}

	translucent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	translucent.Set(0, 0, color.NRGBA{255, 0, 0, 128})

	p1 := layout.NewPage(200, 100)
	p1.Add(
		&layout.Text{Pos: vec.Vec2{X: 10, Y: 80}, Font: F, Size: 11, Fill: color.Black, Text: "Hello, Wörld"},
		&layout.Rect{Rect: rect.Rect{LLx: 10, LLy: 10, URx: 50, URy: 20}, Fill: color.NRGBA{0, 0, 255, 64}},
		&layout.Image{Rect: rect.Rect{LLx: 60, LLy: 10, URx: 80, URy: 30}, Image: translucent},
	)
	p2 := &layout.Page{Width: 200, Height: 100}
	p2.Add(&layout.Text{Pos: vec.Vec2{X: 10, Y: 80}, Font: F, Size: 11, Fill: color.Black, Text: "second"})

	return &layout.Document{
		Pages: []*layout.Page{p1, p2},
		Title: "Test Document",
	}
}

func TestRender(t *testing.T) {
	doc := testDocument(t)
	out, err := Render(doc, &Options{Producer: "test"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)

	if !strings.HasPrefix(s, "%PDF-1.7\n") || !strings.HasSuffix(s, "%%EOF\n") {
		t.Error("malformed file")
	}
	want := []string{
		"/Type /Catalog",
		"/Count 2",
		"/MediaBox [0 0 200 100]",
		"/Subtype /TrueType",
		"/Encoding /WinAnsiEncoding",
		"/FontFile2",
		"/SMask",
		"/ca 0.251",
		"/Title (Test Document)",
		"/Producer (test)",
		"/Type /Metadata",
		"/F1 11 Tf",
		"0 0 200 100 re f",
		"TJ",
	}
	for _, w := range want {
		if !strings.Contains(s, w) {
			t.Errorf("missing %q", w)
		}
	}
	if !strings.Contains(s, "\nBT\n") {
		t.Error("content stream is not readable")
	}
	if n := strings.Count(s, "/Type /Font\n"); n != 1 {
		t.Errorf("font embedded %d times", n)
	}
	// the second page is transparent
	if n := strings.Count(s, "0 0 200 100 re f"); n != 1 {
		t.Errorf("background painted %d times", n)
	}
}

func TestCompress(t *testing.T) {
	doc := testDocument(t)
	plain, err := Render(doc, &Options{})
	if err != nil {
		t.Fatal(err)
	}
	compressed, err := Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(compressed, []byte("/Filter /FlateDecode")) {
		t.Error("default output is not compressed")
	}
	if len(compressed) >= len(plain) {
		t.Errorf("compression did not help: %d vs %d bytes", len(compressed), len(plain))
	}
}

func TestDeterministic(t *testing.T) {
	doc := testDocument(t)
	doc.Date = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a, err := Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("output differs between runs")
	}
	if !bytes.Contains(a, []byte("/CreationDate (D:20240102030405+00'00)")) {
		t.Error("missing creation date")
	}
}

func TestPages(t *testing.T) {
	doc := testDocument(t)
	out, err := Render(doc, &Options{Pages: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte("/Count 1")) {
		t.Error("wrong page count")
	}

	_, err = Render(doc, &Options{Pages: []int{3}})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestErrors(t *testing.T) {
	_, err := Render(&layout.Document{}, nil)
	if !errors.Is(err, render.ErrEmptyDocument) {
		t.Errorf("unexpected error %v", err)
	}

	_, err = Render(testDocument(t), &Options{Version: "1.1"})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestVersion14(t *testing.T) {
	out, err := Render(testDocument(t), &Options{Version: "1.4", Compress: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.4\n")) {
		t.Error("wrong header")
	}
	if !bytes.Contains(out, []byte("\ntrailer\n")) {
		t.Error("missing trailer")
	}
}

func TestEncode(t *testing.T) {
	res := &fontRes{}
	got := res.encode("aé€✓")
	want := []byte{'a', 0xE9, 0x80, '?'}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
	for _, c := range want {
		if !res.used[c] {
			t.Errorf("code %d not marked as used", c)
		}
	}
}

func TestBaseFontName(t *testing.T) {
	F, _ := fonts.NewRegistry().Font(0)
	name := baseFontName(F)
	if name == "" || strings.ContainsAny(name, " /()") {
		t.Errorf("invalid font name %q", name)
	}
	if makeFlags(F)&fontFlagNonsymbolic == 0 {
		t.Error("nonsymbolic flag not set")
	}
}
