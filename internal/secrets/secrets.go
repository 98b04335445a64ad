// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files so
// the access token can stay out of config.ini. The filename is the key and
// the trimmed contents are the value.
//
// Supported key files: github-access-token.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDir is the secrets directory relative to the working directory.
	DefaultDir = ".secrets"

	// KeyGitHubToken holds a GitHub personal access token.
	KeyGitHubToken = "github-access-token"

	// EnvGitHubToken is consulted after the secrets directory.
	EnvGitHubToken = "README_SYNC_ACCESS_TOKEN"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory yields an empty map. Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Token picks the access token: configured wins, then the secrets map, then
// the environment. It returns "" when none is set.
func Token(configured string, secrets map[string]string) string {
	if configured != "" {
		return configured
	}
	if v := secrets[KeyGitHubToken]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvGitHubToken))
}
