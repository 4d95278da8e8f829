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

// Package diag represents compiler diagnostics and formats them for the
// host.
package diag

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/source"
)

// Severity distinguishes errors from warnings.
type Severity int

// These are the supported severities.
const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Span is a byte range within a source file.
// A Span with Detached set does not point into any file.
type Span struct {
	File       files.ID
	Start, End int
	Detached   bool
}

// Detached is the span of diagnostics which have no source location.
var Detached = Span{Detached: true}

// Diagnostic is a message produced by a compiler.
type Diagnostic struct {
	Severity Severity
	Span     Span
	Message  string
	Hints    []string
}

// Errorf creates an error diagnostic.
func Errorf(span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warningf creates a warning diagnostic.
func Warningf(span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithHint appends a hint to the diagnostic and returns it.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hints = append(d.Hints, hint)
	return d
}

// HasErrors reports whether list contains at least one error.
func HasErrors(list []*Diagnostic) bool {
	for _, d := range list {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Entry is a formatted diagnostic.
type Entry struct {
	Severity string   `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Line     int      `json:"line,omitempty"` // one-based
	Column   int      `json:"column,omitempty"`
	Message  string   `json:"message"`
	Hints    []string `json:"hints,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
}

// Error is a failed compilation, as reported to the host.
type Error struct {
	Entries []Entry
}

func (err *Error) Error() string {
	var b strings.Builder
	for i, e := range err.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeEntry(&b, &e)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e *Entry) {
	if e.Path != "" {
		if e.Line > 0 {
			fmt.Fprintf(b, "%s:%d:%d: ", e.Path, e.Line, e.Column)
		} else {
			fmt.Fprintf(b, "%s: ", e.Path)
		}
	}
	fmt.Fprintf(b, "%s: %s", e.Severity, e.Message)
	if e.Snippet != "" {
		b.WriteString("\n    ")
		b.WriteString(e.Snippet)
		if e.Column > 0 {
			b.WriteString("\n    ")
			b.WriteString(strings.Repeat(" ", e.Column-1))
			b.WriteByte('^')
		}
	}
	for _, h := range e.Hints {
		b.WriteString("\n  = hint: ")
		b.WriteString(h)
	}
}

// MarshalJSON encodes the error as a JSON array of entries.
func (err *Error) MarshalJSON() ([]byte, error) {
	entries := err.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// Lookup returns the source of a file, if it is available.
type Lookup func(files.ID) (*source.Source, bool)

// Format converts diagnostics into a host-facing error.  Locations are
// resolved with lookup; diagnostics in files which lookup does not know
// are reported without line and column.
func Format(list []*Diagnostic, lookup Lookup) *Error {
	res := &Error{}
	for _, d := range list {
		e := Entry{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Hints:    d.Hints,
		}
		if !d.Span.Detached {
			e.Path = d.Span.File.String()
			if lookup != nil {
				if src, ok := lookup(d.Span.File); ok {
					line, col := src.LineCol(d.Span.Start)
					e.Line = line + 1
					e.Column = col + 1
					e.Snippet = src.Line(line)
				}
			}
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}
