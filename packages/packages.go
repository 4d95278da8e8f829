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

// Package packages maps package specifications to local root directories.
//
// A Resolver asks the host once for every package it sees.  Both
// successful resolutions and failures are remembered, until Reset is
// called.
package packages

import (
	"io"
	"log/slog"
	"sync"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/host"
)

// Resolver resolves packages to local root directories.
// It is safe for concurrent use.
type Resolver struct {
	host host.Host
	log  *slog.Logger

	mu    sync.Mutex
	slots map[files.PackageSpec]*slot
}

type slot struct {
	done chan struct{}
	root string
	err  error
}

// New creates a new Resolver which asks h for package locations.
// If log is nil, nothing is logged.
func New(h host.Host, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		host:  h,
		log:   log,
		slots: make(map[files.PackageSpec]*slot),
	}
}

// Resolve returns the local root directory of the given package.
// Errors are of type *files.Error.
//
// Concurrent calls for the same package share a single host request.
func (r *Resolver) Resolve(spec files.PackageSpec) (string, error) {
	r.mu.Lock()
	s, ok := r.slots[spec]
	if ok {
		r.mu.Unlock()
		<-s.done
		return s.root, s.err
	}
	s = &slot{done: make(chan struct{})}
	r.slots[spec] = s
	r.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			// the host panicked; forget the slot so that a later call
			// can try again
			s.err = &files.Error{Kind: files.Other, Msg: "host request failed"}
			r.mu.Lock()
			if r.slots[spec] == s {
				delete(r.slots, spec)
			}
			r.mu.Unlock()
		}
		close(s.done)
	}()

	data, err := r.host.Request(spec.HostKey())
	if err != nil {
		s.err = host.PackageError(err, spec)
		r.log.Debug("package resolution failed",
			slog.String("package", spec.String()),
			slog.Any("error", err))
	} else {
		s.root = string(data)
		r.log.Debug("package resolved",
			slog.String("package", spec.String()),
			slog.String("root", s.root))
	}
	finished = true

	return s.root, s.err
}

// Reset forgets all resolutions, including failures.
// Requests already in flight complete normally.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.slots = make(map[files.PackageSpec]*slot)
	r.mu.Unlock()
}

// Len returns the number of packages currently remembered.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
