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
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   Object
		want string
	}{
		{nil, "null"},
		{Bool(true), "true"},
		{Integer(-12), "-12"},
		{Real(1.5), "1.5"},
		{Real(2), "2"},
		{Real(-0.00001), "0"},
		{Real(1.0 / 3), "0.3333"},
		{String("hello"), "(hello)"},
		{String("a(b"), `(a\(b)`},
		{String("a(b)c"), "(a(b)c)"},
		{String(`x\y`), `(x\\y)`},
		{String{0, 1, 2, 3}, "<00010203>"},
		{Name("Type"), "/Type"},
		{Name("A B#"), "/A#20B#23"},
		{Array{Integer(1), nil, Name("X")}, "[1 null /X]"},
		{Dict{"B": Integer(2), "A": Integer(1), "C": nil}, "<<\n/A 1\n/B 2\n>>"},
		{NewReference(12, 0), "12 0 R"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("%#v: got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTextString(t *testing.T) {
	if got := TextString("plain"); string(got) != "plain" {
		t.Errorf("got %q", got)
	}
	got := TextString("ä")
	want := []byte{0xFE, 0xFF, 0x00, 0xE4}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("", 2*60*60)
	got := Date(time.Date(2024, 5, 6, 7, 8, 9, 0, loc))
	if string(got) != "D:20240506070809+02'00" {
		t.Errorf("got %q", got)
	}
}

func TestVersion(t *testing.T) {
	for _, s := range []string{"1.4", "1.5", "1.6", "1.7", "2.0"} {
		ver, err := ParseVersion(s)
		if err != nil {
			t.Fatal(err)
		}
		if ver.String() != s {
			t.Errorf("%s: round trip gave %s", s, ver)
		}
	}
	if _, err := ParseVersion("1.3"); err == nil {
		t.Error("version 1.3 accepted")
	}
	if _, err := NewWriter(io.Discard, Version(100)); err == nil {
		t.Error("invalid version accepted")
	}
}

// checkOffsets verifies that every object offset in the cross-reference
// information points to the start of the corresponding object.
func checkOffsets(t *testing.T, file []byte, offsets map[int]int64) {
	t.Helper()
	for num, pos := range offsets {
		prefix := strconv.Itoa(num) + " 0 obj"
		if pos < 0 || int(pos)+len(prefix) > len(file) || string(file[pos:int(pos)+len(prefix)]) != prefix {
			t.Errorf("object %d: bad offset %d", num, pos)
		}
	}
}

func startXRef(t *testing.T, file []byte) int64 {
	t.Helper()
	m := regexp.MustCompile(`startxref\n(\d+)\n%%EOF\n$`).FindSubmatch(file)
	if m == nil {
		t.Fatal("missing startxref")
	}
	pos, _ := strconv.ParseInt(string(m[1]), 10, 64)
	return pos
}

func writeTestFile(t *testing.T, ver Version) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, ver)
	if err != nil {
		t.Fatal(err)
	}

	catalog := w.Alloc()
	pages := w.Alloc()
	content := w.Alloc()
	unused := w.Alloc()
	_ = unused

	stm, err := w.OpenStream(content, nil, FilterFlate{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Put(pages, Dict{}); err != errStreamOpen {
		t.Errorf("Put with open stream: %v", err)
	}
	_, err = stm.Write([]byte("0 0 m 10 10 l S"))
	if err != nil {
		t.Fatal(err)
	}
	if err := stm.Close(); err != nil {
		t.Fatal(err)
	}

	// the padding makes all offsets after this object two bytes wide
	err = w.Put(pages, Dict{
		"Type":  Name("Pages"),
		"Kids":  Array{},
		"Count": Integer(0),
		"Pad":   String(strings.Repeat("x", 300)),
	})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Put(catalog, Dict{"Type": Name("Catalog"), "Pages": pages})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Put(catalog, Dict{}); err != errAlreadyWritten {
		t.Errorf("duplicate Put: %v", err)
	}

	err = w.Close(Dict{"Root": catalog})
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriterXRefTable(t *testing.T) {
	file := writeTestFile(t, V1_4)
	if !bytes.HasPrefix(file, []byte("%PDF-1.4\n")) {
		t.Errorf("wrong header %q", file[:9])
	}

	pos := startXRef(t, file)
	rest := string(file[pos:])
	if !strings.HasPrefix(rest, "xref\n0 5\n") {
		t.Fatalf("no xref table at %d", pos)
	}
	lines := strings.Split(rest, "\r\n")
	offsets := make(map[int]int64)
	for i := range 5 {
		line := lines[i]
		if i == 0 {
			line = strings.TrimPrefix(line, "xref\n0 5\n")
		}
		if strings.HasSuffix(line, " f") {
			if i != 0 && i != 4 {
				t.Errorf("object %d is free", i)
			}
			continue
		}
		p, err := strconv.ParseInt(line[:10], 10, 64)
		if err != nil {
			t.Fatal(err)
		}
		offsets[i] = p
	}
	if len(offsets) != 3 {
		t.Errorf("got %d objects", len(offsets))
	}
	checkOffsets(t, file, offsets)
	if !strings.Contains(rest, "/Size 5") || !strings.Contains(rest, "/Root 1 0 R") {
		t.Errorf("incomplete trailer:\n%s", rest)
	}
}

func TestWriterXRefStream(t *testing.T) {
	file := writeTestFile(t, V1_7)

	pos := startXRef(t, file)
	if !bytes.HasPrefix(file[pos:], []byte("5 0 obj\n")) {
		t.Fatalf("no xref stream at %d", pos)
	}
	obj := file[pos:]
	if !bytes.Contains(obj, []byte("/Type /XRef")) || !bytes.Contains(obj, []byte("/W [1 2 1]")) {
		t.Errorf("unexpected xref dict:\n%s", obj)
	}

	start := bytes.Index(obj, []byte("\nstream\n")) + 8
	end := bytes.LastIndex(obj, []byte("\nendstream"))
	zr, err := zlib.NewReader(bytes.NewReader(obj[start:end]))
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 6*4 {
		t.Fatalf("got %d bytes of xref data", len(data))
	}

	offsets := make(map[int]int64)
	for i := range 6 {
		row := data[4*i : 4*i+4]
		switch row[0] {
		case 0:
			if i != 0 && i != 4 {
				t.Errorf("object %d is free", i)
			}
		case 1:
			offsets[i] = int64(row[1])<<8 | int64(row[2])
		default:
			t.Errorf("object %d: invalid type %d", i, row[0])
		}
	}
	if offsets[5] != pos {
		t.Errorf("xref stream listed at %d, want %d", offsets[5], pos)
	}
	checkOffsets(t, file, offsets)
}
