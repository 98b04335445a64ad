// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config reads and rewrites the INI file that carries GitHub
// credentials and the last-known README blob SHA and path.
//
// The file has one section, [GITHUB]. Mutable options (readme_sha,
// readme_path) are written back to disk as soon as they change so the next
// push can satisfy the contents API's optimistic-concurrency check.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// SectionGitHub is the INI section holding every option.
const SectionGitHub = "GITHUB"

// DefaultFile is the configuration path used when none is given.
const DefaultFile = "config.ini"

const (
	DefaultAPIURL        = "https://api.github.com"
	DefaultAccept        = "application/vnd.github.v3+json"
	DefaultBranch        = "master"
	DefaultCommitMessage = "Update README.md"
)

// Option names inside [GITHUB].
const (
	KeyUsername       = "username"
	KeyRepository     = "repository"
	KeyAPIURL         = "api_url"
	KeyAccept         = "accept"
	KeyAccessToken    = "access_token"
	KeyReadmeSHA      = "readme_sha"
	KeyReadmePath     = "readme_path"
	KeyBranch         = "branch"
	KeyCommitMessage  = "commit_message"
	KeyCommitterName  = "committer_name"
	KeyCommitterEmail = "committer_email"
)

// ErrMissingOption is returned by Validate when a required option is empty.
var ErrMissingOption = errors.New("missing configuration option")

// Record is the typed view of the [GITHUB] section.
type Record struct {
	Username       string `ini:"username" yaml:"username"`
	Repository     string `ini:"repository" yaml:"repository"`
	APIURL         string `ini:"api_url" yaml:"api_url"`
	Accept         string `ini:"accept" yaml:"accept"`
	AccessToken    string `ini:"access_token" yaml:"access_token"`
	ReadmeSHA      string `ini:"readme_sha" yaml:"readme_sha"`
	ReadmePath     string `ini:"readme_path" yaml:"readme_path"`
	Branch         string `ini:"branch" yaml:"branch"`
	CommitMessage  string `ini:"commit_message" yaml:"commit_message"`
	CommitterName  string `ini:"committer_name" yaml:"committer_name"`
	CommitterEmail string `ini:"committer_email" yaml:"committer_email"`
}

// withDefaults fills options that have a fixed fallback.
func (r Record) withDefaults() Record {
	if r.APIURL == "" {
		r.APIURL = DefaultAPIURL
	}
	if r.Accept == "" {
		r.Accept = DefaultAccept
	}
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	if r.CommitMessage == "" {
		r.CommitMessage = DefaultCommitMessage
	}
	if r.CommitterName == "" {
		r.CommitterName = r.Username
	}
	if r.CommitterEmail == "" && r.Username != "" {
		r.CommitterEmail = r.Username + "@users.noreply.github.com"
	}
	return r
}

// Validate reports every required option that is empty.
func (r Record) Validate() error {
	var missing []string
	if r.Username == "" {
		missing = append(missing, KeyUsername)
	}
	if r.Repository == "" {
		missing = append(missing, KeyRepository)
	}
	if r.AccessToken == "" {
		missing = append(missing, KeyAccessToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s in [%s]", ErrMissingOption, strings.Join(missing, ", "), SectionGitHub)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (r Record) Redacted() Record {
	if r.AccessToken != "" {
		r.AccessToken = "********"
	}
	return r
}

// Store owns the parsed INI file and its path on disk.
type Store struct {
	path string
	file *ini.File
}

// Load parses the INI file at path. A missing file yields an empty store;
// the file is created on the first Set.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultFile
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Get returns the raw value of option, or "" when the section or option is absent.
func (s *Store) Get(option string) string {
	sec, err := s.file.GetSection(SectionGitHub)
	if err != nil {
		return ""
	}
	if !sec.HasKey(option) {
		return ""
	}
	return sec.Key(option).String()
}

// Record maps the [GITHUB] section onto a Record and applies defaults.
func (s *Store) Record() (Record, error) {
	var r Record
	sec, err := s.file.GetSection(SectionGitHub)
	if err != nil {
		return r.withDefaults(), nil
	}
	if err := sec.MapTo(&r); err != nil {
		return Record{}, fmt.Errorf("mapping [%s]: %w", SectionGitHub, err)
	}
	return r.withDefaults(), nil
}

// Set stores value under option and rewrites the file immediately.
func (s *Store) Set(option, value string) error {
	s.file.Section(SectionGitHub).Key(option).SetValue(value)
	if err := s.file.SaveTo(s.path); err != nil {
		return fmt.Errorf("writing config %s: %w", s.path, err)
	}
	return nil
}

// Exists reports whether the backing file is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
