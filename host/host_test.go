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

package host

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/typeset/files"
)

func TestFileError(t *testing.T) {
	cases := []struct {
		in   error
		want *files.Error
	}{
		{CodeNotFound, &files.Error{Kind: files.NotFound, Path: "/r/a.typ"}},
		{CodeAccessDenied, &files.Error{Kind: files.AccessDenied}},
		{CodeIsDirectory, &files.Error{Kind: files.IsDirectory}},
		{CodeFailed, &files.Error{Kind: files.Other, Msg: "see logs for details"}},
		{Code(17), &files.Error{Kind: files.Other, Msg: "see logs for details"}},
		{fmt.Errorf("wrapped: %w", CodeNotFound), &files.Error{Kind: files.NotFound, Path: "/r/a.typ"}},
		{errors.New("disk on fire"), &files.Error{Kind: files.Other, Msg: "disk on fire"}},
	}
	for i, c := range cases {
		got := FileError(c.in, "/r/a.typ")
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("%d: unexpected error (-want +got):\n%s", i, d)
		}
	}
}

func TestPackageError(t *testing.T) {
	spec := files.PackageSpec{Namespace: "preview", Name: "x", Version: files.Version{Major: 1}}

	got := PackageError(CodeNotFound, spec)
	if !errors.Is(got, files.ErrPackageNotFound) || got.Package != spec {
		t.Errorf("unexpected error %v", got)
	}
	got = PackageError(CodeAccessDenied, spec)
	if got.Kind != files.Other || got.Msg != "see logs for details" {
		t.Errorf("unexpected error %v", got)
	}
	got = PackageError(errors.New("offline"), spec)
	if got.Kind != files.Other || got.Msg != "offline" {
		t.Errorf("unexpected error %v", got)
	}
}

func TestFunc(t *testing.T) {
	var h Host = Func(func(key string) ([]byte, error) {
		return []byte("<" + key + ">"), nil
	})
	data, err := h.Request("/a")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "</a>" {
		t.Errorf("got %q", data)
	}
}
