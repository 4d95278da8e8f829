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

package files

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewVPath(t *testing.T) {
	cases := []struct {
		in   string
		want VPath
	}{
		{"", "/"},
		{"/", "/"},
		{"main.typ", "/main.typ"},
		{"/main.typ", "/main.typ"},
		{"a//b/./c.typ", "/a/b/c.typ"},
		{"a/b/../c.typ", "/a/c.typ"},
		{"../x.typ", "/../x.typ"},
		{"a/../../x.typ", "/../x.typ"},
		{`dir\file.png`, "/dir/file.png"},
	}
	for _, c := range cases {
		got := NewVPath(c.in)
		if got != c.want {
			t.Errorf("NewVPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVPathResolve(t *testing.T) {
	root := filepath.Join("project", "root")

	p, ok := NewVPath("/chapters/one.typ").Resolve(root)
	if !ok {
		t.Fatal("resolve failed")
	}
	want := filepath.Join(root, "chapters", "one.typ")
	if p != want {
		t.Errorf("got %q, want %q", p, want)
	}

	for _, bad := range []string{"../secret", "/a/../../b", "x\x00y"} {
		if _, ok := NewVPath(bad).Resolve(root); ok {
			t.Errorf("%q: escape not detected", bad)
		}
	}
}

func TestVPathJoin(t *testing.T) {
	base := NewVPath("/chapters/one.typ")
	cases := []struct {
		rel  string
		want VPath
	}{
		{"two.typ", "/chapters/two.typ"},
		{"../img/a.png", "/img/a.png"},
		{"/top.typ", "/top.typ"},
	}
	for _, c := range cases {
		if got := base.Join(c.rel); got != c.want {
			t.Errorf("Join(%q) = %q, want %q", c.rel, got, c.want)
		}
	}
}

func TestExt(t *testing.T) {
	cases := map[string]string{
		"/a/b.PNG":     "png",
		"/a/b.typ":     "typ",
		"/a/noext":     "",
		"/a/.hidden":   "",
		"/a.b/c":       "",
		"/x.tar.gz":    "gz",
		"/fonts/A.ttf": "ttf",
	}
	for in, want := range cases {
		if got := VPath(in).Ext(); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}

func TestParsePackageSpec(t *testing.T) {
	spec, err := ParsePackageSpec("@preview/cetz:0.2.10")
	if err != nil {
		t.Fatal(err)
	}
	want := PackageSpec{Namespace: "preview", Name: "cetz", Version: Version{0, 2, 10}}
	if d := cmp.Diff(want, spec); d != "" {
		t.Errorf("unexpected spec (-want +got):\n%s", d)
	}
	if k := spec.HostKey(); k != "@preview/cetz/0.2.10" {
		t.Errorf("wrong host key %q", k)
	}
	if s := spec.String(); s != "@preview/cetz:0.2.10" {
		t.Errorf("wrong string %q", s)
	}

	for _, bad := range []string{"preview/cetz:1.0.0", "@preview", "@preview/cetz", "@preview/cetz:1.0", "@/x:1.0.0", "@p/1x:1.0.0"} {
		if _, err := ParsePackageSpec(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestIDIdentity(t *testing.T) {
	spec := PackageSpec{Namespace: "preview", Name: "pkg", Version: Version{1, 0, 0}}

	a := NewID(nil, "/lib.typ")
	b := NewID(nil, "lib.typ")
	c := NewID(&spec, "/lib.typ")
	if a != b {
		t.Error("equal paths give different IDs")
	}
	if a == c {
		t.Error("package is ignored in ID comparison")
	}

	m := map[ID]int{a: 1, c: 2}
	if m[b] != 1 || m[NewID(&spec, "lib.typ")] != 2 {
		t.Error("IDs are not usable as map keys")
	}

	if s := c.String(); s != "@preview/pkg:1.0.0/lib.typ" {
		t.Errorf("wrong string %q", s)
	}
	if got := c.Join("sub/x.typ"); got != NewID(&spec, "/sub/x.typ") {
		t.Errorf("Join lost the package: %v", got)
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("loading: %w", &Error{Kind: NotFound, Path: "/p/a.typ"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound not matched")
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Error("wrong kind matched")
	}
	var fe *Error
	if !errors.As(err, &fe) || fe.Path != "/p/a.typ" {
		t.Error("errors.As failed")
	}

	other := &Error{Kind: Other, Msg: "see logs for details"}
	if other.Error() != "failed to load file: see logs for details" {
		t.Errorf("unexpected message %q", other.Error())
	}
}
