// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileType identifies one of the local artifacts derived from a repository README.
type FileType string

const (
	FileMarkdown FileType = "md"
	FileHTML     FileType = "html"
	FilePDF      FileType = "pdf"
)

// Artifacts holds the local filenames for one (username, repository) pair.
type Artifacts struct {
	// Markdown is the local mirror of the repository README.
	Markdown string `json:"markdown" yaml:"markdown"`

	// HTML is the rendered preview page.
	HTML string `json:"html" yaml:"html"`

	// PDF is the printable preview produced from HTML.
	PDF string `json:"pdf" yaml:"pdf"`
}

// Identity is a git committer or author.
type Identity struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Action names a synchronizer operation selectable from the CLI.
type Action string

const (
	ActionPull    Action = "pull"
	ActionPush    Action = "push"
	ActionPreview Action = "preview"
)

// Actions lists the valid actions in CLI order.
var Actions = []Action{ActionPull, ActionPush, ActionPreview}

// Outcome records how a sync attempt ended.
type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// SyncEvent is one pull or push attempt as recorded in the journal.
type SyncEvent struct {
	// ID is the journal row identifier; zero before insertion.
	ID int64 `json:"id" yaml:"id"`

	Action     Action `json:"action" yaml:"action"`
	Username   string `json:"username" yaml:"username"`
	Repository string `json:"repository" yaml:"repository"`

	// SHABefore is the stored blob SHA when the attempt started.
	SHABefore string `json:"sha_before,omitempty" yaml:"sha_before,omitempty"`

	// SHAAfter is the blob SHA persisted by the attempt, if any.
	SHAAfter string `json:"sha_after,omitempty" yaml:"sha_after,omitempty"`

	// Path is the README path inside the repository.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// StatusCode is the HTTP status returned by GitHub; zero when no response arrived.
	StatusCode int `json:"status_code" yaml:"status_code"`

	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Message carries the error text for failed attempts.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	At time.Time `json:"at" yaml:"at"`
}
