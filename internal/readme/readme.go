// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package readme keeps one repository README in sync with a local Markdown
// file. Pull fetches it, Push uploads local edits guarded by the last known
// blob SHA, and Preview renders the local copy to HTML and PDF.
//
// The blob SHA and repository path are persisted to the configuration file
// after every successful pull or push so the next push satisfies GitHub's
// optimistic concurrency check.
package readme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/readme-sync/internal/config"
	"github.com/pdiddy/readme-sync/internal/ghapi"
	"github.com/pdiddy/readme-sync/pkg/types"
)

// ErrReadmeMissing is returned by Push when the local artifact cannot be read.
var ErrReadmeMissing = errors.New("local readme not readable")

// ContentsAPI is the part of the GitHub API the synchronizer needs.
// *ghapi.Client satisfies it.
type ContentsAPI interface {
	GetReadme(ctx context.Context, owner, repo string) (*ghapi.Readme, error)
	UpdateFile(ctx context.Context, owner, repo, path string, u ghapi.FileUpdate) (*ghapi.UpdateResult, error)
}

// Store reads and persists configuration options. *config.Store satisfies it.
type Store interface {
	Record() (config.Record, error)
	Set(option, value string) error
}

// Previewer renders the artifacts in dir. *preview.Generator satisfies it.
type Previewer interface {
	Generate(ctx context.Context, dir string, a types.Artifacts) error
}

// Journal records sync attempts. *journal.Store satisfies it.
type Journal interface {
	Record(ctx context.Context, ev types.SyncEvent) (int64, error)
}

// Options configures a Synchronizer.
type Options struct {
	API   ContentsAPI
	Store Store

	// Preview is required only for Preview.
	Preview Previewer

	// Journal is optional.
	Journal Journal

	// Repository overrides the repository option from the store.
	Repository string

	// Dir holds the artifacts. Empty means the working directory.
	Dir string

	// Out receives status lines. Nil discards them.
	Out io.Writer

	Logger *slog.Logger
}

// Synchronizer runs pull, push, and preview for one (username, repository) pair.
type Synchronizer struct {
	api     ContentsAPI
	store   Store
	preview Previewer
	journal Journal
	dir     string
	w       io.Writer
	log     *slog.Logger
	now     func() time.Time

	rec       config.Record
	artifacts types.Artifacts
}

// New loads the configuration record once and validates the required options.
func New(opts Options) (*Synchronizer, error) {
	if opts.Store == nil {
		return nil, errors.New("readme: nil store")
	}
	rec, err := opts.Store.Record()
	if err != nil {
		return nil, err
	}
	if opts.Repository != "" {
		rec.Repository = opts.Repository
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s := &Synchronizer{
		api:       opts.API,
		store:     opts.Store,
		preview:   opts.Preview,
		journal:   opts.Journal,
		dir:       opts.Dir,
		w:         opts.Out,
		log:       opts.Logger,
		now:       time.Now,
		rec:       rec,
		artifacts: ArtifactsFor(rec.Username, rec.Repository),
	}
	if s.w == nil {
		s.w = io.Discard
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("repository", rec.Username+"/"+rec.Repository)
	return s, nil
}

// Artifacts returns the local filenames this synchronizer reads and writes.
func (s *Synchronizer) Artifacts() types.Artifacts { return s.artifacts }

// Record returns the configuration as currently held in memory.
func (s *Synchronizer) Record() config.Record { return s.rec }

// PullResult describes a completed pull.
type PullResult struct {
	SHA  string
	Path string

	// Wrote is false when the response carried no content.
	Wrote bool
}

// Pull fetches the repository README. On success the returned SHA and path
// are persisted whether or not content was present; content, when present,
// overwrites the local Markdown artifact byte for byte. A failed request
// leaves the configuration untouched.
func (s *Synchronizer) Pull(ctx context.Context) (*PullResult, error) {
	ev := s.event(types.ActionPull)

	rm, err := s.api.GetReadme(ctx, s.rec.Username, s.rec.Repository)
	if err != nil {
		s.fail(ctx, &ev, err)
		return nil, fmt.Errorf("pulling %s/%s: %w", s.rec.Username, s.rec.Repository, err)
	}
	ev.StatusCode = rm.StatusCode
	ev.Path = rm.Path

	if err := s.persist(config.KeyReadmeSHA, rm.SHA); err != nil {
		s.fail(ctx, &ev, err)
		return nil, err
	}
	if err := s.persist(config.KeyReadmePath, rm.Path); err != nil {
		s.fail(ctx, &ev, err)
		return nil, err
	}
	ev.SHAAfter = rm.SHA

	res := &PullResult{SHA: rm.SHA, Path: rm.Path}
	if rm.HasContent() {
		mdPath := filepath.Join(s.dir, s.artifacts.Markdown)
		if err := os.WriteFile(mdPath, rm.Content, 0o644); err != nil {
			err = fmt.Errorf("writing %s: %w", mdPath, err)
			s.fail(ctx, &ev, err)
			return nil, err
		}
		res.Wrote = true
		fmt.Fprintf(s.w, "pulled: %s (%s)\n", s.artifacts.Markdown, shortSHA(rm.SHA))
	} else {
		fmt.Fprintf(s.w, "skipped: %s (response had no content)\n", s.artifacts.Markdown)
	}
	s.log.Debug("pull complete", "sha", rm.SHA, "path", rm.Path, "status", rm.StatusCode)

	ev.Outcome = types.OutcomeUpdated
	s.record(ctx, ev)
	return res, nil
}

// PushResult describes a push attempt that reached GitHub.
type PushResult struct {
	// Updated is true only for HTTP 200; SHA then holds the new blob SHA.
	Updated    bool
	SHA        string
	StatusCode int
}

// Push uploads the local Markdown artifact against the stored SHA. HTTP 200
// persists the new SHA. Any other HTTP status is logged and reported in the
// result with a nil error, leaving the stored SHA unchanged. A local read
// failure returns an error wrapping ErrReadmeMissing.
func (s *Synchronizer) Push(ctx context.Context) (*PushResult, error) {
	ev := s.event(types.ActionPush)
	ev.Path = s.rec.ReadmePath

	mdPath := filepath.Join(s.dir, s.artifacts.Markdown)
	content, err := os.ReadFile(mdPath)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrReadmeMissing, err)
		s.fail(ctx, &ev, err)
		return nil, err
	}
	if s.rec.ReadmePath == "" {
		err := fmt.Errorf("no %s recorded for %s/%s; run pull first",
			config.KeyReadmePath, s.rec.Username, s.rec.Repository)
		s.fail(ctx, &ev, err)
		return nil, err
	}

	up := ghapi.FileUpdate{
		Message: s.rec.CommitMessage,
		Content: content,
		SHA:     s.rec.ReadmeSHA,
		Branch:  s.rec.Branch,
		Committer: types.Identity{
			Name:  s.rec.CommitterName,
			Email: s.rec.CommitterEmail,
		},
	}
	up.Author = up.Committer

	res, err := s.api.UpdateFile(ctx, s.rec.Username, s.rec.Repository, s.rec.ReadmePath, up)
	if err != nil {
		var apiErr *ghapi.APIError
		if !errors.As(err, &apiErr) {
			s.fail(ctx, &ev, err)
			return nil, fmt.Errorf("pushing %s: %w", s.artifacts.Markdown, err)
		}
		return s.rejected(ctx, ev, apiErr.StatusCode, apiErr.Error()), nil
	}
	if res.StatusCode != http.StatusOK {
		return s.rejected(ctx, ev, res.StatusCode, fmt.Sprintf("HTTP %d", res.StatusCode)), nil
	}

	ev.StatusCode = res.StatusCode
	if err := s.persist(config.KeyReadmeSHA, res.SHA); err != nil {
		s.fail(ctx, &ev, err)
		return nil, err
	}
	ev.SHAAfter = res.SHA
	ev.Outcome = types.OutcomeUpdated
	s.record(ctx, ev)

	fmt.Fprintf(s.w, "pushed: %s (%s -> %s)\n", s.artifacts.Markdown, shortSHA(ev.SHABefore), shortSHA(res.SHA))
	s.log.Debug("push complete", "sha", res.SHA, "status", res.StatusCode)
	return &PushResult{Updated: true, SHA: res.SHA, StatusCode: res.StatusCode}, nil
}

func (s *Synchronizer) rejected(ctx context.Context, ev types.SyncEvent, status int, msg string) *PushResult {
	s.log.Warn("push not applied; stored sha unchanged", "status", status, "sha", s.rec.ReadmeSHA, "error", msg)
	fmt.Fprintf(s.w, "skipped: %s (HTTP %d)\n", s.artifacts.Markdown, status)

	ev.StatusCode = status
	ev.Outcome = types.OutcomeRejected
	ev.Message = msg
	s.record(ctx, ev)
	return &PushResult{StatusCode: status}
}

// Preview renders the local Markdown artifact to HTML and then PDF.
func (s *Synchronizer) Preview(ctx context.Context) error {
	if s.preview == nil {
		return errors.New("readme: no preview generator configured")
	}
	return s.preview.Generate(ctx, s.dir, s.artifacts)
}

// Run performs action the way the command line does: pull and push are
// each followed by a preview.
func (s *Synchronizer) Run(ctx context.Context, action types.Action) error {
	switch action {
	case types.ActionPull:
		if _, err := s.Pull(ctx); err != nil {
			return err
		}
	case types.ActionPush:
		if _, err := s.Push(ctx); err != nil {
			return err
		}
	case types.ActionPreview:
	default:
		return fmt.Errorf("unknown action %q (want %s, %s, or %s)",
			action, types.ActionPull, types.ActionPush, types.ActionPreview)
	}
	return s.Preview(ctx)
}

// persist writes option to the store and mirrors it in memory.
func (s *Synchronizer) persist(option, value string) error {
	if err := s.store.Set(option, value); err != nil {
		return err
	}
	switch option {
	case config.KeyReadmeSHA:
		s.rec.ReadmeSHA = value
	case config.KeyReadmePath:
		s.rec.ReadmePath = value
	}
	return nil
}

func (s *Synchronizer) event(action types.Action) types.SyncEvent {
	return types.SyncEvent{
		Action:     action,
		Username:   s.rec.Username,
		Repository: s.rec.Repository,
		SHABefore:  s.rec.ReadmeSHA,
	}
}

func (s *Synchronizer) fail(ctx context.Context, ev *types.SyncEvent, err error) {
	var apiErr *ghapi.APIError
	if errors.As(err, &apiErr) {
		ev.StatusCode = apiErr.StatusCode
	}
	ev.Outcome = types.OutcomeFailed
	ev.Message = err.Error()
	s.record(ctx, *ev)
}

// record appends ev to the journal. Journal failures never fail a sync.
func (s *Synchronizer) record(ctx context.Context, ev types.SyncEvent) {
	if s.journal == nil {
		return
	}
	ev.At = s.now().UTC()
	if _, err := s.journal.Record(ctx, ev); err != nil {
		s.log.Warn("journal write failed", "action", ev.Action, "error", err)
	}
}

func shortSHA(sha string) string {
	if sha == "" {
		return "none"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
