package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/readme-sync/pkg/types"
)

var pushCmd = &cobra.Command{
	Use:   "push [repository]",
	Short: "Upload the local README and render a preview",
	Long: `Push commits {username}_{repository}_README.md to the repository using the
blob SHA from the last pull or push. If GitHub rejects the update (for
example because the README changed upstream), a warning is logged and the
stored SHA is left alone; pull again to pick up the newer version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, types.ActionPush, optionalRepository(args))
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
