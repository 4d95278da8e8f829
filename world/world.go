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

// Package world implements the compilation world: the environment in which
// a compiler resolves a root document into a laid-out document.
//
// A World owns the font registry, the package cache and, for the duration
// of a compilation, the file store.  File contents and package locations
// are obtained lazily from the host.
package world

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/engine"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
	"seehuhn.de/go/typeset/host"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/markup"
	"seehuhn.de/go/typeset/packages"
	"seehuhn.de/go/typeset/source"
	"seehuhn.de/go/typeset/vfs"
)

// Options can be used to configure a World.
// The zero value (or a nil pointer) selects the defaults.
type Options struct {
	// Compiler is used to compile documents.  The default is the
	// markup compiler.
	Compiler engine.Compiler

	// Now returns the current time.  The default is time.Now.
	Now func() time.Time

	// Logger receives debug messages.  The default discards all output.
	Logger *slog.Logger

	// ResetPackages, if set, makes every compilation start with an empty
	// package cache.  By default resolved packages are kept for the
	// lifetime of the World.
	ResetPackages bool
}

// World is a compilation world.
//
// Compilations on the same World must not overlap, and AddFont and
// ResetFonts must not be called while a compilation is running.  The
// accessors used by the compiler are safe for concurrent use.
type World struct {
	root     string
	host     host.Host
	compiler engine.Compiler
	nowFunc  func() time.Time
	log      *slog.Logger
	resetPkg bool

	library *engine.Library
	fonts   *fonts.Registry
	pkgs    *packages.Resolver

	mu     sync.Mutex
	store  *vfs.Store
	main   files.ID
	now    time.Time
	hasNow bool
}

// New creates a new world.  Project files are located relative to root
// and requested from h.  No I/O happens until the first compilation.
func New(root string, h host.Host, opt *Options) *World {
	if opt == nil {
		opt = &Options{}
	}
	compiler := opt.Compiler
	if compiler == nil {
		compiler = markup.New()
	}
	nowFunc := opt.Now
	if nowFunc == nil {
		nowFunc = time.Now
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var library *engine.Library
	if lp, ok := compiler.(interface{ Library() *engine.Library }); ok {
		library = lp.Library()
	} else {
		library = engine.NewLibrary(nil, markup.DefaultStyle)
	}

	pkgs := packages.New(h, logger)
	return &World{
		root:     root,
		host:     h,
		compiler: compiler,
		nowFunc:  nowFunc,
		log:      logger,
		resetPkg: opt.ResetPackages,
		library:  library,
		fonts:    fonts.NewRegistry(),
		pkgs:     pkgs,
		store:    vfs.NewStore(root, h, pkgs, logger),
		main:     files.NewID(nil, "/main.typ"),
	}
}

// Compile compiles text as the content of the file at path.
// Compilation failures are reported as *diag.Error.
func (w *World) Compile(text, path string) (*layout.Document, error) {
	id := files.NewID(nil, files.NewVPath(path))
	store := w.begin(id)
	store.Insert(id, text)
	return w.run(store)
}

// CompileFile compiles the file at path, which is read through the host.
// If the file cannot be read, the error is a *files.Error and the compiler
// is not invoked.
func (w *World) CompileFile(path string) (*layout.Document, error) {
	id := files.NewID(nil, files.NewVPath(path))
	store := w.begin(id)
	if _, err := store.Record(id); err != nil {
		return nil, err
	}
	return w.run(store)
}

// begin resets the per-compilation state.
func (w *World) begin(main files.ID) *vfs.Store {
	if w.resetPkg {
		w.pkgs.Reset()
	}
	store := vfs.NewStore(w.root, w.host, w.pkgs, w.log)

	w.mu.Lock()
	w.store = store
	w.main = main
	w.hasNow = false
	w.mu.Unlock()
	return store
}

func (w *World) run(store *vfs.Store) (*layout.Document, error) {
	start := time.Now()
	doc, list := w.compiler.Compile(w)
	w.log.Debug("compilation finished",
		slog.String("main", w.Main().String()),
		slog.Bool("ok", doc != nil),
		slog.Int("diagnostics", len(list)),
		slog.Duration("elapsed", time.Since(start)))

	if doc == nil {
		if !diag.HasErrors(list) {
			list = append(list, diag.Errorf(diag.Detached, "compilation failed"))
		}
		return nil, diag.Format(list, func(id files.ID) (*source.Source, bool) {
			rec, ok := store.Lookup(id)
			if !ok {
				return nil, false
			}
			return rec.Source(), true
		})
	}
	for _, d := range list {
		w.log.Debug("compiler warning", slog.String("message", d.Message))
	}
	return doc, nil
}

// AddFont adds the faces in data to the font registry.  The return value
// is the number of faces added.
func (w *World) AddFont(data []byte) int {
	n := w.fonts.Append(data)
	w.log.Debug("fonts added", slog.Int("faces", n), slog.Int("total", w.fonts.Len()))
	return n
}

// ResetFonts resets the font registry to the embedded fonts.
func (w *World) ResetFonts() {
	w.fonts.Seed()
}

// ResetPackages clears the package cache.
func (w *World) ResetPackages() {
	w.pkgs.Reset()
}

// Library implements the engine.World interface.
func (w *World) Library() *engine.Library {
	return w.library
}

// Book implements the engine.World interface.
func (w *World) Book() *fonts.Book {
	return w.fonts.Book()
}

// Main implements the engine.World interface.
func (w *World) Main() files.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.main
}

// Source implements the engine.World interface.
func (w *World) Source(id files.ID) (*source.Source, error) {
	return w.currentStore().Source(id)
}

// File implements the engine.World interface.
func (w *World) File(id files.ID) ([]byte, error) {
	return w.currentStore().File(id)
}

// Font implements the engine.World interface.
func (w *World) Font(i int) (*fonts.Font, bool) {
	return w.fonts.Font(i)
}

// maxOffset bounds the hour offset accepted by Today.
const maxOffset = 24 * 366 * 10000

// Today implements the engine.World interface.
//
// The time is read once per compilation, so that all calls within one
// compilation agree.
func (w *World) Today(offset *int) (engine.Date, bool) {
	now := w.currentTime()

	var t time.Time
	if offset == nil {
		t = now.Local()
	} else {
		if *offset > maxOffset || *offset < -maxOffset {
			return engine.Date{}, false
		}
		days, hours := *offset/24, *offset%24
		t = now.UTC().AddDate(0, 0, days).Add(time.Duration(hours) * time.Hour)
	}

	year := t.Year()
	if year < 1 || year > 9999 {
		return engine.Date{}, false
	}
	return engine.Date{Year: year, Month: int(t.Month()), Day: t.Day()}, true
}

func (w *World) currentTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasNow {
		w.now = w.nowFunc()
		w.hasNow = true
	}
	return w.now
}

func (w *World) currentStore() *vfs.Store {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store
}

// IsFileError reports whether err is a file access error, as opposed to a
// compiler diagnostic.
func IsFileError(err error) bool {
	var fe *files.Error
	return errors.As(err, &fe)
}
