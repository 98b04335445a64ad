// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/readme-sync/internal/container"
	"github.com/pdiddy/readme-sync/pkg/types"
)

var testArtifacts = types.Artifacts{
	Markdown: "alice_demo_README.md",
	HTML:     "alice_demo_README_preview.html",
	PDF:      "alice_demo_README_preview.pdf",
}

// fakeRunner records invocations and writes a PDF when asked to.
type fakeRunner struct {
	found bool
	calls [][]string
	out   []byte
	err   error
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.found {
		return "/usr/local/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return f.out, f.err
	}
	return f.out, os.WriteFile(args[len(args)-1], []byte("%PDF-1.4"), 0o644)
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	ensureErr error
	runErr    error
	output    string
	gotArgs   []string
	gotInput  string
}

func (f *fakeRuntime) Name() string                                  { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool                { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error     { return nil }
func (f *fakeRuntime) EnsureImage(_ context.Context, _ string) error { return f.ensureErr }
func (f *fakeRuntime) Run(_ context.Context, _ string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotArgs = args
	data, _ := io.ReadAll(stdin)
	f.gotInput = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := stdout.Write([]byte(f.output))
	return err
}

var _ container.Runtime = (*fakeRuntime)(nil)

// fakeMarkdownAPI implements MarkdownAPI.
type fakeMarkdownAPI struct {
	gotText, gotContext string
	err                 error
}

func (f *fakeMarkdownAPI) RenderMarkdown(_ context.Context, text, repoContext string) (string, error) {
	f.gotText, f.gotContext = text, repoContext
	if f.err != nil {
		return "", f.err
	}
	return "<h1>from github</h1>", nil
}

func TestGoldmarkRenderer(t *testing.T) {
	src := []byte("# Hi\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n\n~~old~~ <kbd>Ctrl</kbd>\n")
	page, err := NewGoldmarkRenderer().RenderHTML(context.Background(), src, "alice_demo_README.md")
	require.NoError(t, err)

	html := string(page)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>alice_demo_README.md</title>")
	assert.Contains(t, html, `<h1 id="hi">Hi</h1>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `type="checkbox"`)
	assert.Contains(t, html, "<del>old</del>")
	assert.Contains(t, html, "<kbd>Ctrl</kbd>", "raw HTML passes through")
}

func TestGoldmarkRenderer_EscapesTitle(t *testing.T) {
	page, err := NewGoldmarkRenderer().RenderHTML(context.Background(), []byte("x"), "<script>")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>&lt;script&gt;</title>")
}

func TestGitHubRenderer(t *testing.T) {
	api := &fakeMarkdownAPI{}
	page, err := NewGitHubRenderer(api, "alice/demo").RenderHTML(context.Background(), []byte("# Hi"), "t")
	require.NoError(t, err)

	assert.Equal(t, "# Hi", api.gotText)
	assert.Equal(t, "alice/demo", api.gotContext)
	assert.Contains(t, string(page), "<h1>from github</h1>")
	assert.Contains(t, string(page), `class="markdown-body"`)
}

func TestGitHubRenderer_Error(t *testing.T) {
	api := &fakeMarkdownAPI{err: errors.New("HTTP 401")}
	_, err := NewGitHubRenderer(api, "alice/demo").RenderHTML(context.Background(), []byte("# Hi"), "t")
	assert.ErrorContains(t, err, "401")
}

func TestLocalPDF_Args(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{found: true}
	l := &LocalPDF{bin: "wkhtmltopdf", run: runner}

	htmlPath := filepath.Join(dir, testArtifacts.HTML)
	pdfPath := filepath.Join(dir, testArtifacts.PDF)
	require.NoError(t, l.ConvertPDF(context.Background(), htmlPath, pdfPath, testArtifacts.Markdown))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"wkhtmltopdf", "-q", "--title", testArtifacts.Markdown, htmlPath, pdfPath}, runner.calls[0])
	assert.FileExists(t, pdfPath)
}

func TestLocalPDF_FailureIncludesOutput(t *testing.T) {
	runner := &fakeRunner{found: true, out: []byte("QXcbConnection: Could not connect to display\n"), err: errors.New("exit status 1")}
	l := &LocalPDF{bin: "wkhtmltopdf", run: runner}

	err := l.ConvertPDF(context.Background(), "in.html", "out.pdf", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not connect to display")
}

func TestContainerPDF(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, testArtifacts.HTML)
	pdfPath := filepath.Join(dir, testArtifacts.PDF)
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html>hi</html>"), 0o644))

	rt := &fakeRuntime{output: "%PDF-1.4 body"}
	conv, err := NewContainerPDF(context.Background(), rt, "")
	require.NoError(t, err)
	require.NoError(t, conv.ConvertPDF(context.Background(), htmlPath, pdfPath, testArtifacts.Markdown))

	assert.Equal(t, []string{"-q", "--title", testArtifacts.Markdown, "-", "-"}, rt.gotArgs)
	assert.Equal(t, "<html>hi</html>", rt.gotInput)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".preview-*"))
	assert.Empty(t, leftovers)
}

func TestContainerPDF_EmptyOutput(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "in.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0o644))

	conv, err := NewContainerPDF(context.Background(), &fakeRuntime{}, "img")
	require.NoError(t, err)
	err = conv.ConvertPDF(context.Background(), htmlPath, filepath.Join(dir, "out.pdf"), "t")
	assert.ErrorContains(t, err, "empty output")
	assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
}

func TestContainerPDF_ImageUnavailable(t *testing.T) {
	_, err := NewContainerPDF(context.Background(), &fakeRuntime{ensureErr: errors.New("pull denied")}, "img")
	assert.ErrorContains(t, err, "pull denied")
}

func TestNewPDFConverter(t *testing.T) {
	oldRunner, oldDetect := defaultRunner, detectFunc
	defer func() { defaultRunner, detectFunc = oldRunner, oldDetect }()

	tests := []struct {
		name      string
		backend   types.PDFBackend
		localOK   bool
		detectErr error
		wantType  string
		wantErr   bool
	}{
		{"local explicit", types.PDFLocal, false, nil, "*preview.LocalPDF", false},
		{"container explicit", types.PDFContainer, true, nil, "*preview.ContainerPDF", false},
		{"auto prefers host binary", types.PDFAuto, true, nil, "*preview.LocalPDF", false},
		{"auto falls back to container", types.PDFAuto, false, nil, "*preview.ContainerPDF", false},
		{"auto with nothing available", "", false, errors.New("no container runtime available"), "", true},
		{"unknown backend", "latex", true, nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaultRunner = &fakeRunner{found: tt.localOK}
			detectFunc = func(context.Context) (container.Runtime, error) {
				if tt.detectErr != nil {
					return nil, tt.detectErr
				}
				return &fakeRuntime{}, nil
			}

			conv, err := NewPDFConverter(context.Background(), types.PreviewConfig{PDFBackend: tt.backend})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typeName(conv))
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *LocalPDF:
		return "*preview.LocalPDF"
	case *ContainerPDF:
		return "*preview.ContainerPDF"
	}
	return "unknown"
}

func TestNewHTMLRenderer(t *testing.T) {
	r, err := NewHTMLRenderer("", nil, "")
	require.NoError(t, err)
	assert.IsType(t, &GoldmarkRenderer{}, r)

	r, err = NewHTMLRenderer(types.HTMLGitHub, &fakeMarkdownAPI{}, "alice/demo")
	require.NoError(t, err)
	assert.IsType(t, &GitHubRenderer{}, r)

	_, err = NewHTMLRenderer(types.HTMLGitHub, nil, "alice/demo")
	assert.Error(t, err)

	_, err = NewHTMLRenderer("grip", nil, "")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testArtifacts.Markdown), []byte("# Hi"), 0o644))

	runner := &fakeRunner{found: true}
	var log bytes.Buffer
	g := NewGenerator(NewGoldmarkRenderer(), &LocalPDF{bin: "wkhtmltopdf", run: runner}, &log)

	require.NoError(t, g.Generate(context.Background(), dir, testArtifacts))

	html, err := os.ReadFile(filepath.Join(dir, testArtifacts.HTML))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Hi</h1>")
	assert.FileExists(t, filepath.Join(dir, testArtifacts.PDF))
	assert.Contains(t, log.String(), "rendered: "+testArtifacts.HTML)
	assert.Contains(t, log.String(), "rendered: "+testArtifacts.PDF)
}

func TestGenerate_MissingMarkdown(t *testing.T) {
	g := NewGenerator(NewGoldmarkRenderer(), &LocalPDF{bin: "wkhtmltopdf", run: &fakeRunner{}}, nil)
	err := g.Generate(context.Background(), t.TempDir(), testArtifacts)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerate_PDFFailureKeepsHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testArtifacts.Markdown), []byte("# Hi"), 0o644))

	runner := &fakeRunner{found: true, err: errors.New("exit status 1")}
	g := NewGenerator(NewGoldmarkRenderer(), &LocalPDF{bin: "wkhtmltopdf", run: runner}, nil)

	err := g.Generate(context.Background(), dir, testArtifacts)
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, testArtifacts.HTML))
}

func TestDeferredGenerator_ResolverFailureKeepsHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testArtifacts.Markdown), []byte("# Hi"), 0o644))

	resolve := func(context.Context) (PDFConverter, error) {
		return nil, errors.New("wkhtmltopdf not found on PATH")
	}
	var log bytes.Buffer
	g := NewDeferredGenerator(NewGoldmarkRenderer(), resolve, &log)

	err := g.Generate(context.Background(), dir, testArtifacts)
	assert.ErrorContains(t, err, "no PDF converter")
	assert.FileExists(t, filepath.Join(dir, testArtifacts.HTML))
	assert.NoFileExists(t, filepath.Join(dir, testArtifacts.PDF))
	assert.Contains(t, log.String(), "rendered: "+testArtifacts.HTML)
}

func TestDeferredGenerator_ResolvesOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testArtifacts.Markdown), []byte("# Hi"), 0o644))

	resolved := 0
	runner := &fakeRunner{found: true}
	resolve := func(context.Context) (PDFConverter, error) {
		resolved++
		return &LocalPDF{bin: "wkhtmltopdf", run: runner}, nil
	}
	g := NewDeferredGenerator(NewGoldmarkRenderer(), resolve, nil)
	assert.Zero(t, resolved, "nothing is resolved up front")

	require.NoError(t, g.Generate(context.Background(), dir, testArtifacts))
	require.NoError(t, g.Generate(context.Background(), dir, testArtifacts))
	assert.Equal(t, 1, resolved)
	assert.Len(t, runner.calls, 2)
	assert.FileExists(t, filepath.Join(dir, testArtifacts.PDF))
}
