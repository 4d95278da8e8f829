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

package dir

import (
	"archive/tar"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"

	"seehuhn.de/go/typeset/host"
	"seehuhn.de/go/typeset/world"
)

func writeFiles(t *testing.T, base string, contents map[string]string) {
	t.Helper()
	for name, body := range contents {
		path := filepath.Join(base, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(body), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

type entry struct {
	name string
	body string
	dir  bool
}

func makeArchive(t *testing.T, path string, entries []entry) {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body))}
		if e.dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		} else {
			hdr.Typeflag = tar.TypeReg
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.typ":      "hello",
		"img/logo.png":  "\x89PNG",
		"sub/other.typ": "other",
	})
	outside := t.TempDir()
	writeFiles(t, outside, map[string]string{"secret.typ": "secret"})

	h, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	data, err := h.Request(filepath.Join(root, "main.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}
	data, err = h.Request(filepath.Join(root, "img", "logo.png") + host.BinarySuffix)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("got %q", data)
	}

	cases := []struct {
		key  string
		want host.Code
	}{
		{filepath.Join(root, "missing.typ"), host.CodeNotFound},
		{filepath.Join(root, "sub"), host.CodeIsDirectory},
		{filepath.Join(outside, "secret.typ"), host.CodeAccessDenied},
		{"relative.typ", host.CodeAccessDenied},
	}
	for _, c := range cases {
		_, err := h.Request(c.key)
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", c.key, err, c.want)
		}
	}
}

func TestPackageDirectory(t *testing.T) {
	pkgDir := t.TempDir()
	writeFiles(t, pkgDir, map[string]string{
		"preview/hello/0.1.0/lib.typ": "lib",
	})
	h, err := New(t.TempDir(), &Options{PackageDir: pkgDir})
	if err != nil {
		t.Fatal(err)
	}

	data, err := h.Request("@preview/hello/0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(pkgDir, "preview", "hello", "0.1.0")
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}

	lib, err := h.Request(filepath.Join(want, "lib.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if string(lib) != "lib" {
		t.Errorf("got %q", lib)
	}

	for _, key := range []string{"@preview/hello/0.2.0", "@other/hello/0.1.0"} {
		_, err = h.Request(key)
		if !errors.Is(err, host.CodeNotFound) {
			t.Errorf("%s: unexpected error %v", key, err)
		}
	}
	_, err = h.Request("@preview/hello/x")
	if err == nil || errors.Is(err, host.CodeNotFound) {
		t.Errorf("invalid key: unexpected error %v", err)
	}
}

func TestNoPackageDir(t *testing.T) {
	h, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.Request("@preview/hello/0.1.0")
	if !errors.Is(err, host.CodeNotFound) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestPackageArchive(t *testing.T) {
	pkgDir := t.TempDir()
	archive := filepath.Join(pkgDir, "preview", "hello-0.1.0.tar.gz")
	makeArchive(t, archive, []entry{
		{name: "./", dir: true},
		{name: "./lib.typ", body: "from the archive"},
		{name: "src/", dir: true},
		{name: "src/part.typ", body: "part"},
		{name: "deep/nested/file.typ", body: "nested"},
	})

	h, err := New(t.TempDir(), &Options{PackageDir: pkgDir})
	if err != nil {
		t.Fatal(err)
	}
	data, err := h.Request("@preview/hello/0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(pkgDir, "preview", "hello", "0.1.0")
	if string(data) != target {
		t.Errorf("got %q, want %q", data, target)
	}

	got := map[string]string{}
	for _, name := range []string{"lib.typ", "src/part.typ", "deep/nested/file.typ"} {
		body, err := os.ReadFile(filepath.Join(target, filepath.FromSlash(name)))
		if err != nil {
			t.Fatal(err)
		}
		got[name] = string(body)
	}
	want := map[string]string{
		"lib.typ":              "from the archive",
		"src/part.typ":         "part",
		"deep/nested/file.typ": "nested",
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}

	// the extracted directory is used from now on
	if err := os.Remove(archive); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Request("@preview/hello/0.1.0"); err != nil {
		t.Error(err)
	}

	// no temporary directories are left behind
	list, err := os.ReadDir(filepath.Join(pkgDir, "preview", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("%d entries in package directory", len(list))
	}
}

func TestArchiveEscape(t *testing.T) {
	pkgDir := t.TempDir()
	makeArchive(t, filepath.Join(pkgDir, "preview", "evil-1.0.0.tar.gz"), []entry{
		{name: "lib.typ", body: "x"},
		{name: "../../escaped.typ", body: "gotcha"},
	})

	h, err := New(t.TempDir(), &Options{PackageDir: pkgDir})
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.Request("@preview/evil/1.0.0")
	if err == nil || errors.Is(err, host.CodeNotFound) {
		t.Errorf("unexpected error %v", err)
	}
	if _, err := os.Stat(filepath.Join(pkgDir, "escaped.typ")); !errors.Is(err, os.ErrNotExist) {
		t.Error("file written outside the package directory")
	}
	if _, err := os.Stat(filepath.Join(pkgDir, "preview", "evil", "1.0.0")); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial package left behind")
	}
}

func TestWorld(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.typ":         "#include \"chapters/one.typ\"\n#include \"@preview/hello:0.1.0\"\n",
		"chapters/one.typ": "one\n",
	})
	pkgDir := t.TempDir()
	makeArchive(t, filepath.Join(pkgDir, "preview", "hello-0.1.0.tar.gz"), []entry{
		{name: "lib.typ", body: "hello from the package\n"},
	})

	h, err := New(root, &Options{PackageDir: pkgDir})
	if err != nil {
		t.Fatal(err)
	}
	w := world.New(h.Root(), h, nil)
	doc, err := w.CompileFile("/main.typ")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Items) == 0 {
		t.Error("empty document")
	}
}
