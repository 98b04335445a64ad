// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preview renders the local README into an HTML page and a PDF so
// the user can see roughly what GitHub will show. HTML rendering is pluggable
// (local goldmark or the GitHub Markdown API); PDF conversion is delegated to
// wkhtmltopdf, run on the host or inside a container.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/readme-sync/pkg/types"
)

// HTMLRenderer turns Markdown into a standalone HTML page.
type HTMLRenderer interface {
	// RenderHTML returns a complete HTML document for markdown. title is
	// placed in the document head.
	RenderHTML(ctx context.Context, markdown []byte, title string) ([]byte, error)
}

// PDFConverter turns an HTML file into a PDF file.
type PDFConverter interface {
	// ConvertPDF reads htmlPath and writes pdfPath, using title as the
	// document title.
	ConvertPDF(ctx context.Context, htmlPath, pdfPath, title string) error
}

// PDFResolver builds a PDFConverter on first use. NewPDFConverter may look
// up binaries or pull an image, so callers defer it until a PDF is needed.
type PDFResolver func(ctx context.Context) (PDFConverter, error)

// Generator chains an HTMLRenderer and a PDFConverter over one set of artifacts.
type Generator struct {
	html    HTMLRenderer
	resolve PDFResolver
	pdf     PDFConverter
	w       io.Writer
}

// NewGenerator returns a Generator that prints status lines to w.
func NewGenerator(html HTMLRenderer, pdf PDFConverter, w io.Writer) *Generator {
	g := NewDeferredGenerator(html, nil, w)
	g.pdf = pdf
	return g
}

// NewDeferredGenerator returns a Generator whose PDF converter is resolved
// after the HTML page has been written. A resolver error fails only the PDF step.
func NewDeferredGenerator(html HTMLRenderer, resolve PDFResolver, w io.Writer) *Generator {
	if w == nil {
		w = io.Discard
	}
	return &Generator{html: html, resolve: resolve, w: w}
}

// converter returns the PDF converter, resolving it once.
func (g *Generator) converter(ctx context.Context) (PDFConverter, error) {
	if g.pdf != nil {
		return g.pdf, nil
	}
	if g.resolve == nil {
		return nil, errors.New("no PDF converter configured")
	}
	pdf, err := g.resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("no PDF converter: %w", err)
	}
	g.pdf = pdf
	return pdf, nil
}

// Generate renders dir/a.Markdown into dir/a.HTML, then converts that into
// dir/a.PDF. Both outputs are overwritten.
func (g *Generator) Generate(ctx context.Context, dir string, a types.Artifacts) error {
	mdPath := filepath.Join(dir, a.Markdown)
	htmlPath := filepath.Join(dir, a.HTML)
	pdfPath := filepath.Join(dir, a.PDF)

	src, err := os.ReadFile(mdPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", mdPath, err)
	}

	page, err := g.html.RenderHTML(ctx, src, a.Markdown)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", a.Markdown, err)
	}
	if err := os.WriteFile(htmlPath, page, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", htmlPath, err)
	}
	fmt.Fprintf(g.w, "rendered: %s\n", a.HTML)

	pdf, err := g.converter(ctx)
	if err != nil {
		return fmt.Errorf("converting %s: %w", a.HTML, err)
	}
	if err := pdf.ConvertPDF(ctx, htmlPath, pdfPath, a.Markdown); err != nil {
		return fmt.Errorf("converting %s: %w", a.HTML, err)
	}
	fmt.Fprintf(g.w, "rendered: %s\n", a.PDF)
	return nil
}
