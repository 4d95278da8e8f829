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

// Package vfs implements the virtual file store of a compilation.
//
// File contents are requested lazily from a host and cached per file
// identity.  Files inside packages are located through a package resolver.
package vfs

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/host"
	"seehuhn.de/go/typeset/packages"
	"seehuhn.de/go/typeset/source"
)

// Store caches file records by identity.
// It is safe for concurrent use.
type Store struct {
	root string
	host host.Host
	pkgs *packages.Resolver
	log  *slog.Logger

	mu    sync.Mutex
	slots map[files.ID]*slot
}

type slot struct {
	done chan struct{}
	rec  *Record
	err  error
}

// NewStore creates an empty store.  Project files are resolved relative to
// root, package files relative to the package root obtained from pkgs.
// If log is nil, nothing is logged.
func NewStore(root string, h host.Host, pkgs *packages.Resolver, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		root:  root,
		host:  h,
		pkgs:  pkgs,
		log:   log,
		slots: make(map[files.ID]*slot),
	}
}

// Insert registers a text record for id, replacing any cached record.
func (s *Store) Insert(id files.ID, text string) *Record {
	rec := NewText(id, text)
	sl := &slot{done: make(chan struct{}), rec: rec}
	close(sl.done)

	s.mu.Lock()
	s.slots[id] = sl
	s.mu.Unlock()
	return rec
}

// Lookup returns the cached record for id, without contacting the host.
func (s *Store) Lookup(id files.ID) (*Record, bool) {
	s.mu.Lock()
	sl, ok := s.slots[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-sl.done:
	default:
		return nil, false
	}
	if sl.err != nil {
		return nil, false
	}
	return sl.rec, true
}

// Record returns the record for id, loading it from the host if needed.
// Errors are of type *files.Error.
//
// Failed loads are not cached; a later call asks the host again.
func (s *Store) Record(id files.ID) (*Record, error) {
	s.mu.Lock()
	sl, ok := s.slots[id]
	if ok {
		s.mu.Unlock()
		<-sl.done
		return sl.rec, sl.err
	}
	sl = &slot{done: make(chan struct{})}
	s.slots[id] = sl
	s.mu.Unlock()

	defer func() {
		if sl.rec == nil && sl.err == nil {
			// the host panicked
			sl.err = &files.Error{Kind: files.Other, Msg: "host request failed"}
		}
		if sl.err != nil {
			s.mu.Lock()
			if s.slots[id] == sl {
				delete(s.slots, id)
			}
			s.mu.Unlock()
		}
		close(sl.done)
	}()

	sl.rec, sl.err = s.load(id)
	return sl.rec, sl.err
}

// Source returns the text view of the file id.
func (s *Store) Source(id files.ID) (*source.Source, error) {
	rec, err := s.Record(id)
	if err != nil {
		return nil, err
	}
	return rec.Source(), nil
}

// File returns the byte view of the file id.
func (s *Store) File(id files.ID) ([]byte, error) {
	rec, err := s.Record(id)
	if err != nil {
		return nil, err
	}
	return rec.Bytes(), nil
}

func (s *Store) load(id files.ID) (*Record, error) {
	base := s.root
	if spec, ok := id.Package(); ok {
		root, err := s.pkgs.Resolve(spec)
		if err != nil {
			return nil, err
		}
		base = root
	}

	path, ok := id.VPath().Resolve(base)
	if !ok {
		return nil, &files.Error{Kind: files.AccessDenied}
	}

	binary := IsBinary(path)
	key := path
	if binary {
		key += host.BinarySuffix
	}
	s.log.Debug("file request", slog.String("id", id.String()), slog.String("key", key))

	data, err := s.host.Request(key)
	if err != nil {
		return nil, host.FileError(err, path)
	}
	if binary {
		return NewBinary(id, data), nil
	}
	return NewText(id, string(data)), nil
}

// IsBinary reports whether files at the given path are fetched as binary
// data.  The decision is based on the file name extension only.
func IsBinary(path string) bool {
	idx := strings.LastIndexAny(path, `./\`)
	if idx < 0 || path[idx] != '.' {
		return false
	}
	return binaryExt[strings.ToLower(path[idx+1:])]
}

var binaryExt = map[string]bool{
	"jpg":   true,
	"jpeg":  true,
	"png":   true,
	"gif":   true,
	"bmp":   true,
	"webp":  true,
	"svg":   true,
	"pdf":   true,
	"zip":   true,
	"wasm":  true,
	"ttf":   true,
	"otf":   true,
	"woff":  true,
	"woff2": true,
}
