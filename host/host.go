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

// Package host defines the interface through which a compilation world
// obtains file contents and package locations from its host environment.
//
// The host is asked synchronously.  Keys have one of three forms:
//
//	/path/to/file.typ          text content of a file
//	/path/to/image.png:binary  binary content of a file
//	@namespace/name/1.2.3      local root directory of a package
//
// Failures are reported by returning an error.  Errors of type Code carry
// a numeric error code; all other errors are treated as opaque failures.
package host

import (
	"errors"
	"strconv"

	"seehuhn.de/go/typeset/files"
)

// BinarySuffix is appended to the resolved path when binary content is
// requested.
const BinarySuffix = ":binary"

// Host answers requests for file contents and package locations.
type Host interface {
	// Request returns the data stored under key.  For packages the data
	// is the local root path of the package.
	Request(key string) ([]byte, error)
}

// Func adapts an ordinary function to the Host interface.
type Func func(key string) ([]byte, error)

// Request implements the Host interface.
func (f Func) Request(key string) ([]byte, error) {
	return f(key)
}

// Code is a numeric error code returned by a host.
type Code int

// These are the error codes with a defined meaning.
const (
	CodeFailed       Code = 1
	CodeNotFound     Code = 2
	CodeAccessDenied Code = 3
	CodeIsDirectory  Code = 4
)

func (c Code) Error() string {
	switch c {
	case CodeNotFound:
		return "host: not found"
	case CodeAccessDenied:
		return "host: access denied"
	case CodeIsDirectory:
		return "host: is a directory"
	}
	return "host: error code " + strconv.Itoa(int(c))
}

const seeLogs = "see logs for details"

// FileError translates an error returned by a host for a file request into
// a *files.Error.  The path is recorded for NotFound errors.
func FileError(err error, path string) *files.Error {
	var fe *files.Error
	if errors.As(err, &fe) {
		return fe
	}
	var code Code
	if errors.As(err, &code) {
		switch code {
		case CodeNotFound:
			return &files.Error{Kind: files.NotFound, Path: path}
		case CodeAccessDenied:
			return &files.Error{Kind: files.AccessDenied}
		case CodeIsDirectory:
			return &files.Error{Kind: files.IsDirectory}
		}
		return &files.Error{Kind: files.Other, Msg: seeLogs}
	}
	return &files.Error{Kind: files.Other, Msg: err.Error()}
}

// PackageError translates an error returned by a host for a package
// request into a *files.Error.
func PackageError(err error, spec files.PackageSpec) *files.Error {
	var code Code
	if errors.As(err, &code) {
		if code == CodeNotFound {
			return &files.Error{Kind: files.PackageNotFound, Package: spec}
		}
		return &files.Error{Kind: files.Other, Msg: seeLogs}
	}
	return &files.Error{Kind: files.Other, Msg: err.Error()}
}
