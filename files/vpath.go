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
	"path/filepath"
	"strings"
)

// VPath is a virtual path inside a project or a package.
//
// A VPath always starts with a slash and uses slashes as separators.
// Components ".." which cannot be cancelled against a preceding component
// are kept, so that Resolve can detect attempts to leave the root.
type VPath string

// NewVPath normalises p into a virtual path.  Relative paths are
// interpreted relative to the root.
func NewVPath(p string) VPath {
	p = strings.ReplaceAll(p, "\\", "/")

	var comps []string
	for _, c := range strings.Split(p, "/") {
		switch c {
		case "", ".":
			// skip
		case "..":
			if len(comps) > 0 && comps[len(comps)-1] != ".." {
				comps = comps[:len(comps)-1]
			} else {
				comps = append(comps, "..")
			}
		default:
			comps = append(comps, c)
		}
	}
	return VPath("/" + strings.Join(comps, "/"))
}

// Components returns the path components, without the leading root.
func (p VPath) Components() []string {
	s := strings.TrimPrefix(string(p), "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// Dir returns the virtual path of the directory containing p.
func (p VPath) Dir() VPath {
	comps := p.Components()
	if len(comps) == 0 {
		return "/"
	}
	return VPath("/" + strings.Join(comps[:len(comps)-1], "/"))
}

// Join interprets rel relative to the directory containing p.
// If rel starts with a slash, it is taken relative to the root instead.
func (p VPath) Join(rel string) VPath {
	if strings.HasPrefix(rel, "/") {
		return NewVPath(rel)
	}
	return NewVPath(string(p.Dir()) + "/" + rel)
}

// Ext returns the lower-case file name extension, without the dot.
func (p VPath) Ext() string {
	comps := p.Components()
	if len(comps) == 0 {
		return ""
	}
	name := comps[len(comps)-1]
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// Resolve maps p to a path below root.  The second return value is false
// if p would leave root, or if p contains characters which cannot be part
// of a file name.
func (p VPath) Resolve(root string) (string, bool) {
	comps := p.Components()
	for _, c := range comps {
		if c == ".." || strings.ContainsRune(c, 0) {
			return "", false
		}
	}
	if len(comps) == 0 {
		return root, true
	}
	parts := make([]string, 0, len(comps)+1)
	parts = append(parts, root)
	parts = append(parts, comps...)
	return filepath.Join(parts...), true
}

func (p VPath) String() string {
	return string(p)
}
