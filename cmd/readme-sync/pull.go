package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/readme-sync/pkg/types"
)

var pullCmd = &cobra.Command{
	Use:   "pull [repository]",
	Short: "Fetch the repository README and render a preview",
	Long: `Pull downloads the README of the repository into
{username}_{repository}_README.md, records its blob SHA and path in the INI
file, and renders the HTML and PDF previews. The repository defaults to the
one named in the INI file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, types.ActionPull, optionalRepository(args))
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
