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
)

// Kind classifies the errors which can occur when a file or a package is
// accessed.
type Kind int

// These are the possible kinds of file errors.
const (
	Other Kind = iota
	NotFound
	AccessDenied
	IsDirectory
	PackageNotFound
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case AccessDenied:
		return "access denied"
	case IsDirectory:
		return "is a directory"
	case PackageNotFound:
		return "package not found"
	default:
		return "other"
	}
}

// Sentinel values for use with errors.Is.
var (
	ErrNotFound        = errors.New("file not found")
	ErrAccessDenied    = errors.New("failed to load file (access denied)")
	ErrIsDirectory     = errors.New("failed to load file (is a directory)")
	ErrPackageNotFound = errors.New("package not found")
	ErrOther           = errors.New("failed to load file")
)

// Error is returned when a file or a package cannot be loaded.
type Error struct {
	Kind Kind

	// Path is the resolved path, for NotFound errors.
	Path string

	// Package is the package which could not be found, for
	// PackageNotFound errors.
	Package PackageSpec

	// Msg, if non-empty, gives details for Other errors.
	Msg string
}

func (err *Error) Error() string {
	switch err.Kind {
	case NotFound:
		return "file not found (searched at " + err.Path + ")"
	case AccessDenied:
		return ErrAccessDenied.Error()
	case IsDirectory:
		return ErrIsDirectory.Error()
	case PackageNotFound:
		return "package not found: " + err.Package.String()
	}
	if err.Msg != "" {
		return "failed to load file: " + err.Msg
	}
	return ErrOther.Error()
}

// Is allows to match errors against the sentinel values of this package.
func (err *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return err.Kind == NotFound
	case ErrAccessDenied:
		return err.Kind == AccessDenied
	case ErrIsDirectory:
		return err.Kind == IsDirectory
	case ErrPackageNotFound:
		return err.Kind == PackageNotFound
	case ErrOther:
		return err.Kind == Other
	}
	return false
}
