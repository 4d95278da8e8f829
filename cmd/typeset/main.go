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

// Typeset compiles a document and writes the result as a PDF file, an SVG
// image or a PNG image.
//
// Usage:
//
//	typeset [options] main.typ
//
// Compiler diagnostics are written to stderr, or as JSON to stdout if the
// -json flag is given.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"seehuhn.de/go/typeset"
	"seehuhn.de/go/typeset/diag"
	"seehuhn.de/go/typeset/host/dir"
	"seehuhn.de/go/typeset/layout"
	"seehuhn.de/go/typeset/render"
	"seehuhn.de/go/typeset/render/paged"
	"seehuhn.de/go/typeset/render/raster"
	"seehuhn.de/go/typeset/render/svg"
	"seehuhn.de/go/typeset/world"
)

type config struct {
	root     string
	pkgDir   string
	format   string
	output   string
	scale    float64
	fill     string
	size     int
	byHeight bool
	fonts    []string
	json     bool
	verbose  bool
}

func main() {
	cfg := &config{}
	flag.StringVar(&cfg.root, "root", ".", "project root directory")
	flag.StringVar(&cfg.pkgDir, "packages", os.Getenv("TYPESET_PACKAGES"), "package directory")
	flag.StringVar(&cfg.format, "format", "", "output format: pdf, svg or png (default from the output file name, else pdf)")
	flag.StringVar(&cfg.output, "o", "", "output file (default stdout)")
	flag.Float64Var(&cfg.scale, "scale", 2, "pixels per point, for PNG output")
	flag.StringVar(&cfg.fill, "fill", "", "background colour #RRGGBBAA, for PNG output")
	flag.IntVar(&cfg.size, "size", 0, "image width in pixels, for PNG output (default: page width times scale)")
	flag.BoolVar(&cfg.byHeight, "height", false, "-size sets the image height instead of the width")
	flag.Func("font", "additional font `file` (can be repeated)", func(s string) error {
		cfg.fonts = append(cfg.fonts, s)
		return nil
	})
	flag.BoolVar(&cfg.json, "json", false, "print diagnostics as JSON")
	flag.BoolVar(&cfg.verbose, "v", false, "print debug messages")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] main.typ\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	err := run(cfg, flag.Arg(0))
	var de *diag.Error
	if errors.As(err, &de) {
		if cfg.json {
			data, jsonErr := json.MarshalIndent(de, "", "  ")
			if jsonErr != nil {
				log.Fatal(jsonErr)
			}
			fmt.Println(string(data))
		} else {
			fmt.Fprintln(os.Stderr, de)
		}
		os.Exit(1)
	} else if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config, mainFile string) error {
	format, err := outputFormat(cfg.format, cfg.output)
	if err != nil {
		return err
	}
	if cfg.output == "" && format != "svg" && term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("not writing %s data to a terminal, use -o", format)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	h, err := dir.New(cfg.root, &dir.Options{PackageDir: cfg.pkgDir, Logger: logger})
	if err != nil {
		return err
	}
	vpath, err := virtualPath(h.Root(), mainFile)
	if err != nil {
		return err
	}

	c := typeset.New(h.Root(), h, &world.Options{Logger: logger})
	for _, name := range cfg.fonts {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if c.AddFont(data) == 0 {
			return fmt.Errorf("%s: no usable font faces", name)
		}
	}

	doc, err := c.CompileFile(vpath)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.output != "" {
		f, err := os.Create(cfg.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "svg":
		s, err := svg.Render(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, s)
		if err != nil {
			return err
		}
	case "pdf":
		err = paged.Write(out, doc, &paged.Options{Compress: true, Logger: logger})
		if err != nil {
			return err
		}
	case "png":
		err = writePNG(out, doc, cfg)
		if err != nil {
			return err
		}
	}

	if f, ok := out.(*os.File); ok && f != os.Stdout {
		return f.Close()
	}
	return nil
}

func writePNG(w io.Writer, doc *layout.Document, cfg *config) error {
	page, err := render.FirstPage(doc)
	if err != nil {
		return err
	}
	size := cfg.size
	if size <= 0 {
		if cfg.byHeight {
			size = int(math.Ceil(page.Height * cfg.scale))
		} else {
			size = int(math.Ceil(page.Width * cfg.scale))
		}
	}
	pm, err := raster.Render(nil, doc, cfg.scale, cfg.fill, size, !cfg.byHeight)
	if err != nil {
		return err
	}
	return png.Encode(w, pm.Image())
}

// outputFormat determines the output format from the -format flag or
// from the extension of the output file.
func outputFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = "pdf"
		}
	}
	switch format {
	case "pdf", "svg", "png":
		return format, nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}

// virtualPath converts the name of the main file into a path relative to
// the project root.
func virtualPath(root, name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s is outside the project root %s", name, root)
	}
	return "/" + filepath.ToSlash(rel), nil
}
