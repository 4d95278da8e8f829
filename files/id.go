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

// Package files implements the identities used to address files during a
// compilation, together with the errors which can occur when files are
// accessed.
//
// A file is identified by an optional package and a virtual path within
// the project or package.  IDs are comparable and can be used as map keys.
package files

// ID identifies a file.
type ID struct {
	pkg   PackageSpec
	inPkg bool
	path  VPath
}

// NewID returns the ID of the file at path p.  If pkg is non-nil, the path
// is interpreted relative to the root of the package.
func NewID(pkg *PackageSpec, p VPath) ID {
	id := ID{path: NewVPath(string(p))}
	if pkg != nil {
		id.pkg = *pkg
		id.inPkg = true
	}
	return id
}

// Package returns the package the file belongs to.
// The second return value is false for files of the project itself.
func (id ID) Package() (PackageSpec, bool) {
	return id.pkg, id.inPkg
}

// VPath returns the path of the file within its project or package.
func (id ID) VPath() VPath {
	return id.path
}

// Join returns the ID of the file at rel, relative to the directory of id.
// The result belongs to the same package as id.
func (id ID) Join(rel string) ID {
	res := id
	res.path = id.path.Join(rel)
	return res
}

func (id ID) String() string {
	if id.inPkg {
		return id.pkg.String() + string(id.path)
	}
	return string(id.path)
}
