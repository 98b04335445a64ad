// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghapi wraps the three GitHub REST endpoints readme-sync talks to:
// the repository readme, the contents update, and the Markdown renderer.
//
// Every request carries the configured Accept header, an
// "Authorization: token <access_token>" header, and a User-Agent equal to the
// GitHub username. HTTP 429 responses are retried with backoff.
package ghapi

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	"github.com/pdiddy/readme-sync/internal/httputil"
	"github.com/pdiddy/readme-sync/pkg/types"
)

const defaultTimeout = 30 * time.Second

// tokenType makes oauth2 emit "Authorization: token <value>".
const tokenType = "token"

// ErrNotFound matches API errors with HTTP 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from GitHub.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config holds what New needs to build an authenticated client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.github.com.
	BaseURL string

	// Accept is sent on every request.
	Accept string

	// Token is the personal access token.
	Token string

	// UserAgent is sent on every request; GitHub requires one.
	UserAgent string

	// HTTP.Timeout bounds each attempt; 429 backoff waits are not counted.
	HTTP types.HTTPConfig

	// Transport is the innermost round-tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the GitHub REST API.
type Client struct {
	gh *github.Client
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing API URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("API URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var rt http.RoundTripper = &httputil.RetryTransport{
		Base:       httputil.AttemptTimeout(cfg.Transport, timeout),
		MaxRetries: cfg.HTTP.MaxRetries,
	}
	rt = &httputil.HeaderTransport{
		Base: rt,
		Headers: map[string]string{
			"Accept":     cfg.Accept,
			"User-Agent": cfg.UserAgent,
		},
	}
	rt = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: tokenType}),
		Base:   rt,
	}

	// The timeout bounds each attempt, not the retry sequence as a whole.
	gh := github.NewClient(&http.Client{Transport: rt})
	gh.BaseURL = base
	if cfg.UserAgent != "" {
		gh.UserAgent = cfg.UserAgent
	}
	return &Client{gh: gh}, nil
}

// Readme is the decoded readme endpoint response.
type Readme struct {
	SHA  string
	Path string

	// Content holds the decoded bytes; nil when the response carried none.
	Content []byte

	StatusCode int
}

// HasContent reports whether the response carried a non-empty content field.
func (r *Readme) HasContent() bool { return r.Content != nil }

// GetReadme fetches GET /repos/{owner}/{repo}/readme.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (*Readme, error) {
	rc, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return nil, wrapError("fetching readme", resp, err)
	}

	out := &Readme{
		SHA:        rc.GetSHA(),
		Path:       rc.GetPath(),
		StatusCode: resp.StatusCode,
	}
	content, err := decodeContent(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding readme %s: %w", out.Path, err)
	}
	out.Content = content
	return out, nil
}

// decodeContent base64-decodes the content field. GitHub wraps the payload at
// 60 columns, so whitespace is dropped before decoding.
func decodeContent(rc *github.RepositoryContent) ([]byte, error) {
	if rc.Content == nil || *rc.Content == "" {
		return nil, nil
	}
	switch enc := rc.GetEncoding(); enc {
	case "", "base64":
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
	compact := strings.Join(strings.Fields(*rc.Content), "")
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// FileUpdate is the body of a contents PUT.
type FileUpdate struct {
	Message string

	// Content holds raw bytes; they are base64-encoded on the wire.
	Content []byte

	// SHA is the blob being replaced. GitHub rejects a stale value.
	SHA string

	Branch    string
	Committer types.Identity
	Author    types.Identity
}

// UpdateResult is the outcome of a successful contents PUT.
type UpdateResult struct {
	SHA        string
	StatusCode int
}

// UpdateFile sends PUT /repos/{owner}/{repo}/contents/{path}. Non-2xx
// responses are returned as *APIError.
func (c *Client) UpdateFile(ctx context.Context, owner, repo, path string, u FileUpdate) (*UpdateResult, error) {
	opts := &github.RepositoryContentFileOptions{
		Message:   github.Ptr(u.Message),
		Content:   u.Content,
		Committer: commitAuthor(u.Committer),
		Author:    commitAuthor(u.Author),
	}
	if u.SHA != "" {
		opts.SHA = github.Ptr(u.SHA)
	}
	if u.Branch != "" {
		opts.Branch = github.Ptr(u.Branch)
	}

	res, resp, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, wrapError("updating "+path, resp, err)
	}

	out := &UpdateResult{StatusCode: resp.StatusCode}
	if res != nil && res.Content != nil {
		out.SHA = res.Content.GetSHA()
	}
	return out, nil
}

func commitAuthor(id types.Identity) *github.CommitAuthor {
	if id.Name == "" && id.Email == "" {
		return nil
	}
	return &github.CommitAuthor{Name: github.Ptr(id.Name), Email: github.Ptr(id.Email)}
}

// RenderMarkdown renders text through POST /markdown in gfm mode.
// repoContext ("owner/repo") resolves issue references and relative links.
func (c *Client) RenderMarkdown(ctx context.Context, text, repoContext string) (string, error) {
	out, resp, err := c.gh.Markdown.Render(ctx, text, &github.MarkdownOptions{
		Mode:    "gfm",
		Context: repoContext,
	})
	if err != nil {
		return "", wrapError("rendering markdown", resp, err)
	}
	return out, nil
}

// wrapError converts a go-github error into *APIError when GitHub answered.
func wrapError(op string, resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	var ge *github.ErrorResponse
	if errors.As(err, &ge) {
		apiErr.Message = ge.Message
	} else {
		apiErr.Message = err.Error()
	}
	return apiErr
}
