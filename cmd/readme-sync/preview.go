package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/readme-sync/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview [repository]",
	Short: "Render the local README to HTML and PDF",
	Long: `Preview renders {username}_{repository}_README.md into
{username}_{repository}_README_preview.html and then into
{username}_{repository}_README_preview.pdf with wkhtmltopdf.

HTML comes from goldmark by default; --renderer github uses the GitHub
Markdown API instead. wkhtmltopdf runs from PATH when installed and otherwise
inside a docker or podman container (--pdf-backend).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, types.ActionPreview, optionalRepository(args))
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
