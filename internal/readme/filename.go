// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package readme

import (
	"errors"
	"fmt"

	"github.com/pdiddy/readme-sync/pkg/types"
)

// ErrUnknownFileType is returned by BuildFilename for a FileType it does not know.
var ErrUnknownFileType = errors.New("unknown file type")

// BuildFilename returns the local artifact name for (username, repository)
// and ft. The result depends on nothing else.
func BuildFilename(username, repository string, ft types.FileType) (string, error) {
	id := username + "_" + repository
	switch ft {
	case types.FileMarkdown:
		return id + "_README.md", nil
	case types.FileHTML:
		return id + "_README_preview.html", nil
	case types.FilePDF:
		return id + "_README_preview.pdf", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFileType, ft)
	}
}

// ArtifactsFor returns all three artifact names for (username, repository).
func ArtifactsFor(username, repository string) types.Artifacts {
	md, _ := BuildFilename(username, repository, types.FileMarkdown)
	html, _ := BuildFilename(username, repository, types.FileHTML)
	pdf, _ := BuildFilename(username, repository, types.FilePDF)
	return types.Artifacts{Markdown: md, HTML: html, PDF: pdf}
}
