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

// Package dir implements a host which serves files from a directory tree.
//
// Packages are looked up in a package directory.  The package
// "@ns/name:1.2.3" is stored in the directory <PackageDir>/ns/name/1.2.3.
// If this directory does not exist but the archive
// <PackageDir>/ns/name-1.2.3.tar.gz does, the archive is extracted first.
package dir

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/host"
)

// Options can be used to configure a Host.
type Options struct {
	// PackageDir is the directory which holds packages.  If this is
	// empty, no packages are available.
	PackageDir string

	// Logger receives debug messages.  The default discards all output.
	Logger *slog.Logger
}

// Host serves files below a root directory.
// Host implements the host.Host interface.
type Host struct {
	root   string
	pkgDir string
	log    *slog.Logger

	mu sync.Mutex // serialises package extraction
}

var _ host.Host = (*Host)(nil)

// New creates a host which serves the files below root.
func New(root string, opt *Options) (*Host, error) {
	if opt == nil {
		opt = &Options{}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	pkgDir := opt.PackageDir
	if pkgDir != "" {
		pkgDir, err = filepath.Abs(pkgDir)
		if err != nil {
			return nil, err
		}
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Host{
		root:   absRoot,
		pkgDir: pkgDir,
		log:    logger,
	}, nil
}

// Root returns the absolute path of the root directory.  This is the
// project root to use for a compilation world.
func (h *Host) Root() string {
	return h.root
}

// Request implements the host.Host interface.
func (h *Host) Request(key string) ([]byte, error) {
	if strings.HasPrefix(key, "@") {
		return h.requestPackage(key)
	}
	path := strings.TrimSuffix(key, host.BinarySuffix)
	return h.readFile(path)
}

func (h *Host) readFile(path string) ([]byte, error) {
	if !within(h.root, path) && !(h.pkgDir != "" && within(h.pkgDir, path)) {
		return nil, host.CodeAccessDenied
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fileCode(err)
	}
	if fi.IsDir() {
		return nil, host.CodeIsDirectory
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileCode(err)
	}
	h.log.Debug("file read", slog.String("path", path), slog.Int("bytes", len(data)))
	return data, nil
}

// fileCode translates file system errors into host error codes.
func fileCode(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return host.CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return host.CodeAccessDenied
	}
	return err
}

func (h *Host) requestPackage(key string) ([]byte, error) {
	spec, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	if h.pkgDir == "" {
		return nil, host.CodeNotFound
	}

	nsDir := filepath.Join(h.pkgDir, spec.Namespace)
	target := filepath.Join(nsDir, spec.Name, spec.Version.String())

	h.mu.Lock()
	defer h.mu.Unlock()

	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return []byte(target), nil
	}

	archive := filepath.Join(nsDir, spec.Name+"-"+spec.Version.String()+".tar.gz")
	f, err := os.Open(archive)
	if err != nil {
		return nil, fileCode(err)
	}
	defer f.Close()

	h.log.Debug("extracting package",
		slog.String("package", spec.String()),
		slog.String("archive", archive))
	err = extract(f, target)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", spec, err)
	}
	return []byte(target), nil
}

// parseKey converts a host key of the form "@ns/name/1.2.3" into a package
// specification.
func parseKey(key string) (files.PackageSpec, error) {
	idx := strings.LastIndexByte(key, '/')
	if idx < 0 {
		return files.PackageSpec{}, fmt.Errorf("invalid package key %q", key)
	}
	return files.ParsePackageSpec(key[:idx] + ":" + key[idx+1:])
}

// extract unpacks a gzip-compressed tar archive into the directory target,
// which must not exist yet.  The archive is first unpacked into a
// temporary directory, so that target either holds the complete package
// or does not exist.
func extract(r io.Reader, target string) error {
	parent := filepath.Dir(target)
	err := os.MkdirAll(parent, 0o755)
	if err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(parent, ".extract-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	zr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		name := filepath.FromSlash(strings.TrimPrefix(hdr.Name, "./"))
		if name == "" || name == "." {
			continue
		}
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the package directory", hdr.Name)
		}
		dest := filepath.Join(tmp, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(dest, 0o755)
		case tar.TypeReg:
			err = writeFile(dest, tr)
		default:
			// links and special files are not used by packages
			continue
		}
		if err != nil {
			return err
		}
	}

	err = os.Chmod(tmp, 0o755)
	if err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

func writeFile(dest string, r io.Reader) error {
	err := os.MkdirAll(filepath.Dir(dest), 0o755)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// within reports whether path lies inside the directory dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel) || rel == "."
}
