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

package packages

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/host"
)

var (
	known   = files.PackageSpec{Namespace: "preview", Name: "known", Version: files.Version{Major: 1, Minor: 2, Patch: 3}}
	missing = files.PackageSpec{Namespace: "preview", Name: "missing", Version: files.Version{Major: 0, Minor: 1}}
)

func countingHost(calls *atomic.Int32) host.Host {
	return host.Func(func(key string) ([]byte, error) {
		calls.Add(1)
		switch key {
		case "@preview/known/1.2.3":
			return []byte("/cache/preview/known/1.2.3"), nil
		case "@preview/denied/1.0.0":
			return nil, host.CodeAccessDenied
		}
		return nil, host.CodeNotFound
	})
}

func TestResolve(t *testing.T) {
	var calls atomic.Int32
	r := New(countingHost(&calls), nil)

	root, err := r.Resolve(known)
	if err != nil {
		t.Fatal(err)
	}
	if root != "/cache/preview/known/1.2.3" {
		t.Errorf("wrong root %q", root)
	}
	root, err = r.Resolve(known)
	if err != nil || root != "/cache/preview/known/1.2.3" {
		t.Errorf("second lookup: %q %v", root, err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("host was asked %d times", n)
	}
}

func TestFailureIsMemoised(t *testing.T) {
	var calls atomic.Int32
	r := New(countingHost(&calls), nil)

	for range 3 {
		_, err := r.Resolve(missing)
		if !errors.Is(err, files.ErrPackageNotFound) {
			t.Fatalf("unexpected error %v", err)
		}
		var fe *files.Error
		if !errors.As(err, &fe) || fe.Package != missing {
			t.Fatalf("wrong package in error: %v", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("host was asked %d times", n)
	}

	r.Reset()
	if _, err := r.Resolve(missing); err == nil {
		t.Error("missing package resolved after reset")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("host was asked %d times after reset", n)
	}
}

func TestOtherCode(t *testing.T) {
	var calls atomic.Int32
	r := New(countingHost(&calls), nil)

	spec := files.PackageSpec{Namespace: "preview", Name: "denied", Version: files.Version{Major: 1}}
	_, err := r.Resolve(spec)
	if !errors.Is(err, files.ErrOther) {
		t.Fatalf("unexpected error %v", err)
	}
	if err.Error() != "failed to load file: see logs for details" {
		t.Errorf("unexpected message %q", err)
	}
}

func TestConcurrentResolve(t *testing.T) {
	var calls atomic.Int32
	r := New(countingHost(&calls), nil)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(known); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("host was asked %d times", n)
	}
	if r.Len() != 1 {
		t.Errorf("resolver holds %d entries", r.Len())
	}
}

func TestHostPanic(t *testing.T) {
	failed := false
	r := New(host.Func(func(key string) ([]byte, error) {
		if !failed {
			failed = true
			panic("host failure")
		}
		return []byte("/cache/preview/known/1.2.3"), nil
	}), nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was not propagated")
			}
		}()
		r.Resolve(known)
	}()

	if r.Len() != 0 {
		t.Error("failed resolution was remembered")
	}
	root, err := r.Resolve(known)
	if err != nil || root != "/cache/preview/known/1.2.3" {
		t.Errorf("got %q, %v", root, err)
	}
}
