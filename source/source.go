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

// Package source provides a read-only view of a text file, together with
// a line index for mapping byte offsets to line and column numbers.
package source

import (
	"sort"
	"unicode/utf8"

	"github.com/zeebo/xxh3"

	"seehuhn.de/go/typeset/files"
)

// Source is the text content of a file.
// A Source is immutable and can be shared between goroutines.
type Source struct {
	id    files.ID
	text  string
	lines []int // byte offsets of line starts
	hash  uint64
}

// New creates a new Source for the given file.
func New(id files.ID, text string) *Source {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lines = append(lines, i+1)
		}
	}
	return &Source{
		id:    id,
		text:  text,
		lines: lines,
		hash:  xxh3.HashString(text),
	}
}

// ID returns the identity of the file.
func (s *Source) ID() files.ID {
	return s.id
}

// Text returns the full text.
func (s *Source) Text() string {
	return s.text
}

// Len returns the length of the text in bytes.
func (s *Source) Len() int {
	return len(s.text)
}

// Fingerprint returns a 64-bit hash of the text.
func (s *Source) Fingerprint() uint64 {
	return s.hash
}

// LineCount returns the number of lines.  An empty text has one line.
func (s *Source) LineCount() int {
	return len(s.lines)
}

// LineCol maps a byte offset to a zero-based line number and a zero-based
// column, counted in runes.  Offsets beyond the end of the text are
// clamped.
func (s *Source) LineCol(offset int) (line, col int) {
	offset = max(0, min(offset, len(s.text)))
	line = sort.SearchInts(s.lines, offset+1) - 1
	col = utf8.RuneCountInString(s.text[s.lines[line]:offset])
	return line, col
}

// Line returns the text of the given zero-based line, without the line
// terminator.
func (s *Source) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	start := s.lines[i]
	end := len(s.text)
	if i+1 < len(s.lines) {
		end = s.lines[i+1]
	}
	line := s.text[start:end]
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// LineStart returns the byte offset where the given zero-based line starts.
func (s *Source) LineStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(s.lines) {
		return len(s.text)
	}
	return s.lines[i]
}

// Slice returns the text between the byte offsets start and end.
func (s *Source) Slice(start, end int) string {
	start = max(0, min(start, len(s.text)))
	end = max(start, min(end, len(s.text)))
	return s.text[start:end]
}
