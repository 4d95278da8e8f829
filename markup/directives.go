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
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"seehuhn.de/go/typeset/boxes"
	"seehuhn.de/go/typeset/files"
	"seehuhn.de/go/typeset/fonts"
)

// directive handles a line starting with "#".
func (st *state) directive(file files.ID, line string, offset int) {
	s := &scanner{line: line, pos: 1, base: offset}
	nameStart := s.offset()
	name, ok := s.ident()
	if !ok {
		err := s.errorf("expected a directive name after #")
		st.errorf(file, err.start, err.end, "%s", err.msg)
		return
	}
	nameEnd := s.offset()
	if !st.w.Library().Has(name) {
		st.errorf(file, nameStart-1, nameEnd, "unknown directive %q", name).
			WithHint("known directives are " + strings.Join(st.w.Library().Functions, ", "))
		return
	}

	switch name {
	case "set":
		s.skipSpace()
		targetStart := s.offset()
		target, ok := s.ident()
		if !ok {
			err := s.errorf("expected set target")
			st.errorf(file, err.start, err.end, "%s", err.msg)
			return
		}
		args, ok := st.args(file, s)
		if !ok {
			return
		}
		st.set(file, target, targetStart, s.offset(), args)

	case "include":
		s.skipSpace()
		if s.peek() != '"' {
			err := s.errorf("expected a file name")
			st.errorf(file, err.start, err.end, "%s", err.msg)
			return
		}
		pathStart := s.offset()
		path, err := s.str()
		if err != nil {
			st.errorf(file, err.start, err.end, "%s", err.msg)
			return
		}
		pathEnd := s.offset()
		if !st.trailing(file, s) {
			return
		}
		st.include(file, path, pathStart, pathEnd)

	case "image":
		args, ok := st.args(file, s)
		if !ok {
			return
		}
		st.endParagraph()
		st.image(file, args, nameStart-1, s.offset())

	case "rect":
		args, ok := st.args(file, s)
		if !ok {
			return
		}
		st.endParagraph()
		st.rect(file, args)

	case "v":
		args, ok := st.args(file, s)
		if !ok {
			return
		}
		if len(args) != 1 || args[0].name != "" {
			st.errorf(file, nameStart-1, s.offset(), "v expects exactly one length")
			return
		}
		amount, err := args[0].val.length(st.text.size)
		if err != nil {
			st.errorf(file, args[0].start, args[0].end, "%s", err)
			return
		}
		st.endParagraph()
		st.pager.Add(boxes.Rule(0, amount, 0, nil), 0)

	case "pagebreak":
		args, ok := st.args(file, s)
		if !ok {
			return
		}
		if len(args) > 0 {
			st.errorf(file, args[0].start, args[0].end, "pagebreak takes no arguments")
			return
		}
		st.endParagraph()
		st.pager.Break()

	default:
		st.errorf(file, nameStart-1, nameEnd, "%s cannot be used as a directive", name)
	}
}

// args parses the argument list of a directive, including the check for
// trailing garbage.
func (st *state) args(file files.ID, s *scanner) ([]arg, bool) {
	args, err := s.args()
	if err != nil {
		st.errorf(file, err.start, err.end, "%s", err.msg)
		return nil, false
	}
	return args, st.trailing(file, s)
}

func (st *state) trailing(file files.ID, s *scanner) bool {
	if !s.atEnd() {
		st.errorf(file, s.offset(), s.base+len(s.line), "unexpected characters after directive")
		return false
	}
	return true
}

func (st *state) set(file files.ID, target string, start, end int, args []arg) {
	for _, a := range args {
		if a.name == "" {
			st.errorf(file, a.start, a.end, "set expects named arguments")
			return
		}
	}

	switch target {
	case "page":
		p := st.page
		for _, a := range args {
			var err error
			switch a.name {
			case "width":
				p.width, err = a.val.length(st.text.size)
			case "height":
				p.height, err = a.val.length(st.text.size)
			case "margin":
				p.margin, err = a.val.length(st.text.size)
			case "fill":
				p.fill, err = a.val.color()
			case "numbering":
				p.numbering, err = a.val.boolean()
			default:
				st.errorf(file, a.start, a.end, "unknown page property %q", a.name)
				continue
			}
			if err != nil {
				st.errorf(file, a.val.start, a.val.end, "%s", err)
				return
			}
		}
		if p.width <= 0 || p.height <= 0 || 2*p.margin >= min(p.width, p.height) {
			st.errorf(file, start, end, "invalid page geometry")
			return
		}
		st.endParagraph()
		st.page = p
		st.pager.SetStyle(st.pageStyle())

	case "text":
		t := st.text
		for _, a := range args {
			var err error
			switch a.name {
			case "font":
				t.family, err = a.val.text()
			case "size":
				t.size, err = a.val.length(st.text.size)
				if err == nil && t.size <= 0 {
					st.errorf(file, a.val.start, a.val.end, "font size must be positive")
					return
				}
			case "fill":
				t.fill, err = a.val.color()
			case "weight":
				t.variant.Weight, err = weight(&a.val)
			case "style":
				t.variant.Style, err = style(&a.val)
			default:
				st.errorf(file, a.start, a.end, "unknown text property %q", a.name)
				continue
			}
			if err != nil {
				st.errorf(file, a.val.start, a.val.end, "%s", err)
				return
			}
		}
		st.text = t

	case "par":
		for _, a := range args {
			var err error
			switch a.name {
			case "justify":
				st.justify, err = a.val.boolean()
			case "leading":
				if a.val.unit == "" {
					st.leading, err = a.val.number()
				} else {
					var l float64
					l, err = a.val.length(st.text.size)
					st.leading = l / st.text.size
				}
			default:
				st.errorf(file, a.start, a.end, "unknown paragraph property %q", a.name)
				continue
			}
			if err != nil {
				st.errorf(file, a.val.start, a.val.end, "%s", err)
				return
			}
		}

	case "document":
		for _, a := range args {
			var err error
			switch a.name {
			case "title":
				st.title, err = a.val.text()
			case "author":
				var name string
				name, err = a.val.text()
				st.author = append(st.author, name)
			default:
				st.errorf(file, a.start, a.end, "unknown document property %q", a.name)
				continue
			}
			if err != nil {
				st.errorf(file, a.val.start, a.val.end, "%s", err)
				return
			}
		}

	default:
		st.errorf(file, start, end, "cannot set %q", target).
			WithHint("try page, text, par or document")
	}
}

var (
	errInvalidWeight = errors.New("invalid font weight")
	errInvalidStyle  = errors.New("invalid font style")
)

var weightNames = map[string]int{
	"thin":       100,
	"extralight": 200,
	"light":      300,
	"regular":    400,
	"medium":     500,
	"semibold":   600,
	"bold":       700,
	"extrabold":  800,
	"black":      900,
}

func weight(v *value) (int, error) {
	if v.kind == kindNumber && v.unit == "" {
		if v.num >= 100 && v.num <= 900 {
			return int(v.num), nil
		}
	} else if w, ok := weightNames[v.str]; ok && (v.kind == kindString || v.kind == kindIdent) {
		return w, nil
	}
	return 0, errInvalidWeight
}

func style(v *value) (fonts.Style, error) {
	if v.kind == kindString || v.kind == kindIdent {
		switch v.str {
		case "normal":
			return fonts.Normal, nil
		case "italic":
			return fonts.Italic, nil
		case "oblique":
			return fonts.Oblique, nil
		}
	}
	return fonts.Normal, errInvalidStyle
}

// resolve finds the file a path refers to, relative to the current file.
func resolve(file files.ID, path string) (files.ID, error) {
	if strings.HasPrefix(path, "@") {
		spec, err := files.ParsePackageSpec(path)
		if err != nil {
			return files.ID{}, err
		}
		return files.NewID(&spec, "/lib.typ"), nil
	}
	return file.Join(path), nil
}

func (st *state) include(file files.ID, path string, start, end int) {
	id, err := resolve(file, path)
	if err != nil {
		st.errorf(file, start, end, "%s", err)
		return
	}
	if slices.Contains(st.stack, id) {
		st.errorf(file, start, end, "cyclic include of %s", id)
		return
	}
	src, err := st.w.Source(id)
	if err != nil {
		st.errorf(file, start, end, "%s", err)
		return
	}
	st.run(src)
}

func (st *state) image(file files.ID, args []arg, start, end int) {
	var path string
	var pathArg *arg
	var width, height float64
	for i := range args {
		a := &args[i]
		var err error
		switch a.name {
		case "":
			if pathArg != nil {
				st.errorf(file, a.start, a.end, "unexpected argument")
				return
			}
			pathArg = a
			path, err = a.val.text()
		case "width":
			width, err = a.val.length(st.text.size)
		case "height":
			height, err = a.val.length(st.text.size)
		default:
			st.errorf(file, a.start, a.end, "unknown image property %q", a.name)
			continue
		}
		if err != nil {
			st.errorf(file, a.val.start, a.val.end, "%s", err)
			return
		}
	}
	if pathArg == nil {
		st.errorf(file, start, end, "missing image path")
		return
	}

	id := file.Join(path)
	data, err := st.w.File(id)
	if err != nil {
		st.errorf(file, pathArg.start, pathArg.end, "%s", err)
		return
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		st.errorf(file, pathArg.start, pathArg.end, "failed to decode image: %s", err).
			WithHint("supported formats are PNG, JPEG, GIF, BMP and WebP")
		return
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		st.errorf(file, pathArg.start, pathArg.end, "image is empty")
		return
	}
	aspect := float64(b.Dy()) / float64(b.Dx())
	textWidth := st.pager.Style().TextWidth()
	switch {
	case width > 0 && height > 0:
	case width > 0:
		height = width * aspect
	case height > 0:
		width = height / aspect
	default:
		width = min(float64(b.Dx()), textWidth)
		height = width * aspect
	}
	st.pager.Add(boxes.Image(img, data, format, width, height), 0)
}

func (st *state) rect(file files.ID, args []arg) {
	width := st.pager.Style().TextWidth()
	height := st.text.size
	var fill = st.text.fill
	for _, a := range args {
		var err error
		switch a.name {
		case "width":
			width, err = a.val.length(st.text.size)
		case "height":
			height, err = a.val.length(st.text.size)
		case "fill":
			fill, err = a.val.color()
		default:
			st.errorf(file, a.start, a.end, "unknown rect property %q", a.name)
			continue
		}
		if err != nil {
			st.errorf(file, a.val.start, a.val.end, "%s", err)
			return
		}
	}
	st.pager.Add(boxes.Rule(width, height, 0, fill), 0)
}
