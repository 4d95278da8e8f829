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

package typeset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/host"
	"seehuhn.de/go/typeset/render/paged"
	"seehuhn.de/go/typeset/world"
)

func newCompiler() *Compiler {
	h := host.Func(func(key string) ([]byte, error) {
		return nil, host.CodeNotFound
	})
	return New("/", h, &world.Options{
		Now: func() time.Time { return time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC) },
	})
}

func TestCompileSVG(t *testing.T) {
	c := newCompiler()
	out, err := c.CompileSVG("#set page(fill: none)", "/main.typ")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<svg") || !strings.Contains(out, `class="typeset-page"`) {
		t.Errorf("not an SVG page: %.60q", out)
	}
	if strings.Contains(out, "typeset-background") {
		t.Error("transparent page has a background")
	}
}

func TestCompileFileNotFound(t *testing.T) {
	c := newCompiler()
	_, err := c.CompileFile("/missing.typ")
	if !errors.Is(err, files.ErrNotFound) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCompileError(t *testing.T) {
	c := newCompiler()
	_, err := c.CompilePDF("#frobnicate()\n", "/main.typ", nil)
	var de *diag.Error
	if !errors.As(err, &de) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCompilePDF(t *testing.T) {
	c := newCompiler()
	out, err := c.CompilePDF("Hello #datetime.today()\n", "/main.typ", &paged.Options{Version: "1.5"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.5\n")) {
		t.Errorf("wrong header %.10q", out)
	}
}

func TestCompileImage(t *testing.T) {
	c := newCompiler()
	text := "#set page(width: 200pt, height: 100pt, margin: 10pt, fill: none)\n"
	pm, err := c.CompileImage(text, "/main.typ", 1, "#FFFFFFFF", 50, true)
	if err != nil {
		t.Fatal(err)
	}
	if pm.Width != 50 || pm.Height != 25 {
		t.Errorf("wrong size %dx%d", pm.Width, pm.Height)
	}
	for i, v := range pm.Pix {
		if v < 254 {
			t.Fatalf("byte %d = %d", i, v)
		}
	}
}

func TestFonts(t *testing.T) {
	c := newCompiler()
	n := c.World().Book().Len()
	if got := c.AddFont(fonts.Embedded()[1]); got != 1 {
		t.Errorf("%d faces added", got)
	}
	if c.World().Book().Len() != n+1 {
		t.Error("font not added")
	}
	c.ResetFonts()
	if c.World().Book().Len() != n {
		t.Error("font not removed")
	}
}
