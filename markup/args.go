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

package markup

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindIdent
	kindCall
)

// value is an argument value like `"text"`, `12pt`, `none` or
// `rgb("#ff0000")`.
type value struct {
	kind valueKind
	str  string // string contents, identifier or function name
	num  float64
	unit string
	args []arg // arguments of a call

	start, end int
}

// arg is a positional or named argument.
type arg struct {
	name string
	val  value

	start, end int
}

// syntaxError is a parse error at a byte offset.
type syntaxError struct {
	msg        string
	start, end int
}

func (err *syntaxError) Error() string {
	return err.msg
}

// scanner reads directive syntax from a single line.  Offsets are
// reported relative to the start of the file.
type scanner struct {
	line string
	pos  int
	base int
}

func (s *scanner) offset() int {
	return s.base + s.pos
}

func (s *scanner) errorf(format string, a ...any) *syntaxError {
	end := s.pos + 1
	if end > len(s.line) {
		end = len(s.line)
	}
	return &syntaxError{
		msg:   fmt.Sprintf(format, a...),
		start: s.base + min(s.pos, len(s.line)),
		end:   s.base + end,
	}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.line) && (s.line[s.pos] == ' ' || s.line[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) peek() byte {
	if s.pos < len(s.line) {
		return s.line[s.pos]
	}
	return 0
}

func (s *scanner) atEnd() bool {
	s.skipSpace()
	return s.pos >= len(s.line)
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '-'
}

func (s *scanner) ident() (string, bool) {
	start := s.pos
	if s.pos >= len(s.line) || !isIdentStart(s.line[s.pos]) {
		return "", false
	}
	for s.pos < len(s.line) && isIdentCont(s.line[s.pos]) {
		s.pos++
	}
	return s.line[start:s.pos], true
}

// args parses a parenthesised argument list.
func (s *scanner) args() ([]arg, *syntaxError) {
	s.skipSpace()
	if s.peek() != '(' {
		return nil, s.errorf("expected opening parenthesis")
	}
	s.pos++

	var res []arg
	for {
		s.skipSpace()
		if s.peek() == ')' {
			s.pos++
			return res, nil
		}
		if s.pos >= len(s.line) {
			return nil, s.errorf("unclosed argument list")
		}

		start := s.offset()
		var a arg
		save := s.pos
		if name, ok := s.ident(); ok {
			s.skipSpace()
			if s.peek() == ':' {
				s.pos++
				a.name = name
			} else {
				s.pos = save
			}
		}
		val, err := s.value()
		if err != nil {
			return nil, err
		}
		a.val = val
		a.start = start
		a.end = s.offset()
		res = append(res, a)

		s.skipSpace()
		switch s.peek() {
		case ',':
			s.pos++
		case ')':
		default:
			return nil, s.errorf("expected comma or closing parenthesis")
		}
	}
}

func (s *scanner) value() (value, *syntaxError) {
	s.skipSpace()
	start := s.offset()
	c := s.peek()
	switch {
	case c == '"':
		str, err := s.str()
		if err != nil {
			return value{}, err
		}
		return value{kind: kindString, str: str, start: start, end: s.offset()}, nil

	case c >= '0' && c <= '9' || c == '.' || c == '-':
		numStart := s.pos
		if c == '-' {
			s.pos++
		}
		for s.pos < len(s.line) && (s.line[s.pos] >= '0' && s.line[s.pos] <= '9' || s.line[s.pos] == '.') {
			s.pos++
		}
		x, err := strconv.ParseFloat(s.line[numStart:s.pos], 64)
		if err != nil {
			s.pos = numStart
			return value{}, s.errorf("invalid number")
		}
		unitStart := s.pos
		for s.pos < len(s.line) && (isIdentStart(s.line[s.pos]) || s.line[s.pos] == '%') {
			s.pos++
		}
		return value{
			kind:  kindNumber,
			num:   x,
			unit:  s.line[unitStart:s.pos],
			start: start,
			end:   s.offset(),
		}, nil

	case isIdentStart(c):
		name, _ := s.ident()
		s.skipSpace()
		if s.peek() == '(' {
			args, err := s.args()
			if err != nil {
				return value{}, err
			}
			return value{kind: kindCall, str: name, args: args, start: start, end: s.offset()}, nil
		}
		return value{kind: kindIdent, str: name, start: start, end: s.offset()}, nil
	}
	return value{}, s.errorf("expected a value")
}

// str parses a string literal with backslash escapes.
func (s *scanner) str() (string, *syntaxError) {
	start := s.pos
	s.pos++ // opening quote
	var b strings.Builder
	for s.pos < len(s.line) {
		c := s.line[s.pos]
		switch c {
		case '"':
			s.pos++
			return b.String(), nil
		case '\\':
			s.pos++
			if s.pos >= len(s.line) {
				break
			}
			switch e := s.line[s.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
			s.pos++
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	s.pos = start
	return "", s.errorf("unclosed string")
}

// length converts a value to PDF points.  The em unit refers to the given
// font size.
func (v *value) length(em float64) (float64, error) {
	if v.kind != kindNumber {
		return 0, fmt.Errorf("expected a length")
	}
	switch v.unit {
	case "pt":
		return v.num, nil
	case "mm":
		return v.num / 25.4 * 72, nil
	case "cm":
		return v.num / 2.54 * 72, nil
	case "in":
		return v.num * 72, nil
	case "em":
		return v.num * em, nil
	case "":
		if v.num == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("length %g is missing a unit", v.num)
	}
	return 0, fmt.Errorf("unknown unit %q", v.unit)
}

func (v *value) number() (float64, error) {
	if v.kind != kindNumber || v.unit != "" {
		return 0, fmt.Errorf("expected a number")
	}
	return v.num, nil
}

func (v *value) boolean() (bool, error) {
	if v.kind == kindIdent {
		switch v.str {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected true or false")
}

func (v *value) text() (string, error) {
	if v.kind != kindString {
		return "", fmt.Errorf("expected a string")
	}
	return v.str, nil
}

var namedColors = map[string]color.NRGBA{
	"black":  {0, 0, 0, 255},
	"white":  {255, 255, 255, 255},
	"gray":   {170, 170, 170, 255},
	"red":    {255, 65, 54, 255},
	"green":  {46, 204, 64, 255},
	"blue":   {0, 116, 217, 255},
	"yellow": {255, 220, 0, 255},
}

// color converts a value to a colour.  The identifier none gives nil.
func (v *value) color() (color.Color, error) {
	switch v.kind {
	case kindIdent:
		if v.str == "none" {
			return nil, nil
		}
		if c, ok := namedColors[v.str]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("unknown colour %q", v.str)
	case kindString:
		return parseHexColor(v.str)
	case kindCall:
		if v.str == "rgb" && len(v.args) == 1 && v.args[0].name == "" && v.args[0].val.kind == kindString {
			return parseHexColor(v.args[0].val.str)
		}
		if v.str == "rgb" && len(v.args) >= 3 {
			var cc [4]uint8
			cc[3] = 255
			for i, a := range v.args {
				if i > 3 {
					return nil, fmt.Errorf("too many colour components")
				}
				x, err := a.val.component()
				if err != nil {
					return nil, err
				}
				cc[i] = x
			}
			return color.NRGBA{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}, nil
		}
	}
	return nil, fmt.Errorf("expected a colour")
}

// component converts a number like 255 or 50% to a colour component.
func (v *value) component() (uint8, error) {
	if v.kind != kindNumber {
		return 0, fmt.Errorf("expected a colour component")
	}
	x := v.num
	switch v.unit {
	case "%":
		x = x / 100 * 255
	case "":
	default:
		return 0, fmt.Errorf("invalid colour component")
	}
	if x < 0 || x > 255 {
		return 0, fmt.Errorf("colour component out of range")
	}
	return uint8(x + 0.5), nil
}

// parseHexColor parses colours like "#rrggbb" and "#rrggbbaa".
func parseHexColor(s string) (color.Color, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(data) != 3 && len(data) != 4 {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	c := color.NRGBA{R: data[0], G: data[1], B: data[2], A: 255}
	if len(data) == 4 {
		c.A = data[3]
	}
	return c, nil
}
