// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/readme-sync/internal/container"
	"github.com/pdiddy/readme-sync/pkg/types"
)

const (
	// DefaultWkhtmltopdf is the converter binary looked up on PATH.
	DefaultWkhtmltopdf = "wkhtmltopdf"

	// DefaultPDFImage is an image whose entrypoint is wkhtmltopdf.
	DefaultPDFImage = "surnet/alpine-wkhtmltopdf:3.21.2-0.12.6-full"
)

// commandRunner abstracts process execution for testing.
type commandRunner interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

var defaultRunner commandRunner = osRunner{}

// wkhtmltopdfArgs builds the converter flags. "-" reads stdin or writes stdout.
func wkhtmltopdfArgs(title, in, out string) []string {
	return []string{"-q", "--title", title, in, out}
}

// LocalPDF runs wkhtmltopdf installed on the host.
type LocalPDF struct {
	bin string
	run commandRunner
}

// NewLocalPDF returns a converter for bin; empty means DefaultWkhtmltopdf.
func NewLocalPDF(bin string) *LocalPDF {
	if bin == "" {
		bin = DefaultWkhtmltopdf
	}
	return &LocalPDF{bin: bin, run: defaultRunner}
}

// Available reports whether the binary can be found.
func (l *LocalPDF) Available() bool {
	_, err := l.run.LookPath(l.bin)
	return err == nil
}

// ConvertPDF implements PDFConverter.
func (l *LocalPDF) ConvertPDF(ctx context.Context, htmlPath, pdfPath, title string) error {
	out, err := l.run.CombinedOutput(ctx, l.bin, wkhtmltopdfArgs(title, htmlPath, pdfPath)...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", l.bin, err, msg)
		}
		return fmt.Errorf("%s: %w", l.bin, err)
	}
	return nil
}

// ContainerPDF pipes the HTML page through a wkhtmltopdf container image.
type ContainerPDF struct {
	runtime container.Runtime
	image   string
}

// NewContainerPDF returns a converter that runs image on rt. It pulls the
// image when it is not present locally.
func NewContainerPDF(ctx context.Context, rt container.Runtime, image string) (*ContainerPDF, error) {
	if image == "" {
		image = DefaultPDFImage
	}
	if err := rt.EnsureImage(ctx, image); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerPDF{runtime: rt, image: image}, nil
}

// ConvertPDF implements PDFConverter. Output goes to a temporary file that
// is renamed over pdfPath on success.
func (c *ContainerPDF) ConvertPDF(ctx context.Context, htmlPath, pdfPath, title string) error {
	in, err := os.Open(htmlPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", htmlPath, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(pdfPath), ".preview-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	runErr := c.runtime.Run(ctx, c.image, wkhtmltopdfArgs(title, "-", "-"), in, tmp)
	closeErr := tmp.Close()
	if runErr != nil {
		os.Remove(tmpPath)
		return runErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if info, err := os.Stat(tmpPath); err == nil && info.Size() == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("%s produced empty output for %s", c.image, htmlPath)
	}

	if err := os.Rename(tmpPath, pdfPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// detectFunc is swapped in tests.
var detectFunc = container.DetectRuntime

// NewPDFConverter picks a PDFConverter for cfg.PDFBackend. Auto prefers the
// host binary and falls back to a container runtime.
func NewPDFConverter(ctx context.Context, cfg types.PreviewConfig) (PDFConverter, error) {
	local := NewLocalPDF(cfg.WkhtmltopdfBin)

	switch cfg.PDFBackend {
	case types.PDFLocal:
		return local, nil
	case types.PDFContainer:
		return newContainerConverter(ctx, cfg.PDFImage)
	case types.PDFAuto, "":
		if local.Available() {
			return local, nil
		}
		conv, err := newContainerConverter(ctx, cfg.PDFImage)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("%s not found on PATH", local.bin),
				err,
			)
		}
		return conv, nil
	default:
		return nil, fmt.Errorf("unknown PDF backend %q (want %s, %s, or %s)",
			cfg.PDFBackend, types.PDFAuto, types.PDFLocal, types.PDFContainer)
	}
}

func newContainerConverter(ctx context.Context, image string) (PDFConverter, error) {
	rt, err := detectFunc(ctx)
	if err != nil {
		return nil, err
	}
	return NewContainerPDF(ctx, rt, image)
}

// NewHTMLRenderer picks an HTMLRenderer for backend. api is only used by
// the github backend.
func NewHTMLRenderer(backend types.HTMLBackend, api MarkdownAPI, repoContext string) (HTMLRenderer, error) {
	switch backend {
	case types.HTMLGoldmark, "":
		return NewGoldmarkRenderer(), nil
	case types.HTMLGitHub:
		if api == nil {
			return nil, errors.New("github renderer needs an API client")
		}
		return NewGitHubRenderer(api, repoContext), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (want %s or %s)",
			backend, types.HTMLGoldmark, types.HTMLGitHub)
	}
}
