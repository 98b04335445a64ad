// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preview

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// pageStyle approximates GitHub's README column.
const pageStyle = `body{margin:0;padding:32px;background:#fff}
.markdown-body{box-sizing:border-box;max-width:980px;margin:0 auto;font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;font-size:16px;line-height:1.5;color:#1f2328;word-wrap:break-word}
.markdown-body h1,.markdown-body h2{padding-bottom:.3em;border-bottom:1px solid #d1d9e0}
.markdown-body pre{padding:16px;overflow:auto;background:#f6f8fa;border-radius:6px}
.markdown-body code{font-family:ui-monospace,SFMono-Regular,Menlo,Consolas,monospace;font-size:85%}
.markdown-body table{border-collapse:collapse}
.markdown-body td,.markdown-body th{padding:6px 13px;border:1px solid #d1d9e0}
.markdown-body blockquote{margin:0;padding:0 1em;color:#59636e;border-left:.25em solid #d1d9e0}
.markdown-body img{max-width:100%}`

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<article class="markdown-body">
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title string
	Style template.CSS
	Body  template.HTML
}

// wrapPage embeds an HTML fragment in the preview page.
func wrapPage(title string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title: title,
		Style: template.CSS(pageStyle),
		Body:  template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return buf.Bytes(), nil
}

// GoldmarkRenderer renders GitHub Flavored Markdown locally. Raw HTML in the
// README is passed through, as GitHub does for its allow-listed tags.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer returns a renderer with GFM tables, strikethrough,
// task lists, autolinks, and heading anchors enabled.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// RenderHTML implements HTMLRenderer.
func (r *GoldmarkRenderer) RenderHTML(_ context.Context, markdown []byte, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("goldmark: %w", err)
	}
	return wrapPage(title, body.Bytes())
}

// MarkdownAPI renders Markdown remotely. *ghapi.Client satisfies it.
type MarkdownAPI interface {
	RenderMarkdown(ctx context.Context, text, repoContext string) (string, error)
}

// GitHubRenderer renders through the GitHub Markdown API, so the output
// matches github.com (issue references, emoji, sanitization).
type GitHubRenderer struct {
	api         MarkdownAPI
	repoContext string
}

// NewGitHubRenderer returns a renderer that resolves references against
// repoContext ("owner/repo").
func NewGitHubRenderer(api MarkdownAPI, repoContext string) *GitHubRenderer {
	return &GitHubRenderer{api: api, repoContext: repoContext}
}

// RenderHTML implements HTMLRenderer.
func (r *GitHubRenderer) RenderHTML(ctx context.Context, markdown []byte, title string) ([]byte, error) {
	body, err := r.api.RenderMarkdown(ctx, string(markdown), r.repoContext)
	if err != nil {
		return nil, err
	}
	return wrapPage(title, []byte(body))
}
