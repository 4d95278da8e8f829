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
	"fmt"
	"strconv"
	"strings"
)

// Version is the version of a package.
type Version struct {
	Major, Minor, Patch uint32
}

// ParseVersion parses a version string of the form "1.2.3".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid package version %q", s)
	}
	var vv [3]uint32
	for i, part := range parts {
		x, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("invalid package version %q", s)
		}
		vv[i] = uint32(x)
	}
	return Version{Major: vv[0], Minor: vv[1], Patch: vv[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PackageSpec identifies a versioned package, for example
// "@preview/example:0.1.0".
type PackageSpec struct {
	Namespace string
	Name      string
	Version   Version
}

// ParsePackageSpec parses a package specification of the form
// "@namespace/name:version".
func ParsePackageSpec(s string) (PackageSpec, error) {
	rest, ok := strings.CutPrefix(s, "@")
	if !ok {
		return PackageSpec{}, fmt.Errorf("package specification %q must start with @", s)
	}
	namespace, rest, ok := strings.Cut(rest, "/")
	if !ok || !isIdent(namespace) {
		return PackageSpec{}, fmt.Errorf("package specification %q is missing a namespace", s)
	}
	name, ver, ok := strings.Cut(rest, ":")
	if !ok || !isIdent(name) {
		return PackageSpec{}, fmt.Errorf("package specification %q is missing a name or version", s)
	}
	version, err := ParseVersion(ver)
	if err != nil {
		return PackageSpec{}, err
	}
	return PackageSpec{Namespace: namespace, Name: name, Version: version}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

// HostKey returns the key used to ask the host for the root directory of
// the package.
func (spec PackageSpec) HostKey() string {
	return "@" + spec.Namespace + "/" + spec.Name + "/" + spec.Version.String()
}

func (spec PackageSpec) String() string {
	return "@" + spec.Namespace + "/" + spec.Name + ":" + spec.Version.String()
}
