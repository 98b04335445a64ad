// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the readme-sync CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/readme-sync/internal/journal"
	"github.com/pdiddy/readme-sync/internal/secrets"
	"github.com/pdiddy/readme-sync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the readme-sync CLI.
var rootCmd = &cobra.Command{
	Use:   "readme-sync <repository> <action>",
	Short: "Keep a GitHub README in sync with a local Markdown file",
	Long: `readme-sync pulls a repository README into a local Markdown file, pushes
local edits back, and renders HTML and PDF previews.

Credentials and sync state live in an INI file (default config.ini) under the
[GITHUB] section. The blob SHA of the last pull or push is written back to it
so the next push is accepted by GitHub.

Actions:
  pull     fetch the README, then render a preview
  push     upload the local README, then render a preview
  preview  render the local README to HTML and PDF`,
	Example: `  readme-sync demo pull
  readme-sync push
  readme-sync history --limit 5`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		s, err := secrets.Load(viper.GetString("secrets-dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			slog.Debug("loaded secrets", "dir", viper.GetString("secrets-dir"), "count", len(s))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, types.Action(args[1]), args[0])
	},
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "settings file (default: ./readme-sync.yaml or ~/.config/readme-sync/config.yaml)")
	pf.String("ini", "config.ini", "INI file holding the [GITHUB] section")
	pf.String("dir", ".", "directory for the README and preview files")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of credential files")
	pf.String("journal", journal.DefaultPath, "sync history database; empty disables it")
	pf.Duration("timeout", 0, "timeout per HTTP attempt, not counting 429 backoff (default 30s)")
	pf.Int("max-retries", 5, "retries on HTTP 429")
	pf.String("renderer", string(types.HTMLGoldmark), "HTML renderer: goldmark or github")
	pf.String("pdf-backend", string(types.PDFAuto), "PDF backend: auto, local, or container")
	pf.String("pdf-image", "", "wkhtmltopdf container image")
	pf.String("wkhtmltopdf", "", "wkhtmltopdf binary (default: found on PATH)")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range []string{
		"ini", "dir", "secrets-dir", "journal", "timeout", "max-retries",
		"renderer", "pdf-backend", "pdf-image", "wkhtmltopdf", "verbose",
	} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("readme-sync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "readme-sync"))
		}
	}

	viper.SetEnvPrefix("README_SYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
