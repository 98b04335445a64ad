package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/readme-sync/internal/config"
	"github.com/pdiddy/readme-sync/internal/readme"
	"github.com/pdiddy/readme-sync/pkg/types"
)

// statusReport is what the status command prints.
type statusReport struct {
	File      string           `yaml:"file"`
	Config    config.Record    `yaml:"config"`
	Artifacts types.Artifacts  `yaml:"artifacts"`
	Settings  types.SyncConfig `yaml:"settings"`
	Problems  string           `yaml:"problems,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync configuration with the token redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.Load(viper.GetString("ini"))
		if err != nil {
			return err
		}
		rec, err := tokenStore{store}.Record()
		if err != nil {
			return err
		}

		report := statusReport{
			File:      store.Path(),
			Config:    rec.Redacted(),
			Artifacts: readme.ArtifactsFor(rec.Username, rec.Repository),
			Settings:  syncConfig(),
		}
		if err := rec.Validate(); err != nil {
			report.Problems = err.Error()
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
