// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/readme-sync/internal/config"
	"github.com/pdiddy/readme-sync/internal/ghapi"
	"github.com/pdiddy/readme-sync/internal/journal"
	"github.com/pdiddy/readme-sync/internal/preview"
	"github.com/pdiddy/readme-sync/internal/readme"
	"github.com/pdiddy/readme-sync/internal/secrets"
	"github.com/pdiddy/readme-sync/pkg/types"
)

// tokenStore fills a missing access token from the secrets directory or
// the environment. Writes go straight to the INI file.
type tokenStore struct {
	*config.Store
}

func (s tokenStore) Record() (config.Record, error) {
	rec, err := s.Store.Record()
	if err != nil {
		return rec, err
	}
	rec.AccessToken = secrets.Token(rec.AccessToken, loadedSecrets)
	return rec, nil
}

// syncConfig collects tool settings from flags, env, and the settings file.
func syncConfig() types.SyncConfig {
	return types.SyncConfig{
		HTTP: types.HTTPConfig{
			Timeout:    viper.GetDuration("timeout"),
			MaxRetries: viper.GetInt("max-retries"),
		},
		Preview: types.PreviewConfig{
			Renderer:       types.HTMLBackend(viper.GetString("renderer")),
			PDFBackend:     types.PDFBackend(viper.GetString("pdf-backend")),
			WkhtmltopdfBin: viper.GetString("wkhtmltopdf"),
			PDFImage:       viper.GetString("pdf-image"),
		},
		Dir: viper.GetString("dir"),
	}
}

// session is a synchronizer plus the resources it holds open.
type session struct {
	*readme.Synchronizer
	journal *journal.Store
}

func (s *session) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// openSession loads config.ini, builds the GitHub client, the preview
// pipeline, and the journal, and returns a ready synchronizer. repository
// overrides the INI value when non-empty.
func openSession(cmd *cobra.Command, repository string) (*session, error) {
	cfg := syncConfig()

	store, err := config.Load(viper.GetString("ini"))
	if err != nil {
		return nil, err
	}
	if !store.Exists() {
		slog.Warn("config file not found", "path", store.Path())
	}
	ts := tokenStore{store}
	rec, err := ts.Record()
	if err != nil {
		return nil, err
	}
	if repository != "" {
		rec.Repository = repository
	}
	if err := rec.Validate(); err != nil {
		if !store.Exists() {
			return nil, fmt.Errorf("%w (create %s, e.g. with `mage init`)", err, store.Path())
		}
		return nil, err
	}

	api, err := ghapi.New(ghapi.Config{
		BaseURL:   rec.APIURL,
		Accept:    rec.Accept,
		Token:     rec.AccessToken,
		UserAgent: rec.Username,
		HTTP:      cfg.HTTP,
	})
	if err != nil {
		return nil, err
	}

	html, err := preview.NewHTMLRenderer(cfg.Preview.Renderer, api, rec.Username+"/"+rec.Repository)
	if err != nil {
		return nil, err
	}

	s := &session{}
	if path := viper.GetString("journal"); path != "" {
		j, err := journal.Open(path)
		if err != nil {
			slog.Warn("sync history disabled", "path", path, "error", err)
		} else {
			s.journal = j
		}
	}

	opts := readme.Options{
		API:        api,
		Store:      ts,
		Preview:    preview.NewDeferredGenerator(html, pdfResolver(cfg.Preview), cmd.OutOrStdout()),
		Repository: rec.Repository,
		Dir:        cfg.Dir,
		Out:        cmd.OutOrStdout(),
		Logger:     slog.Default(),
	}
	if s.journal != nil {
		opts.Journal = s.journal
	}
	s.Synchronizer, err = readme.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// pdfResolver defers converter lookup to the preview step so a missing
// wkhtmltopdf never blocks a pull or push.
func pdfResolver(cfg types.PreviewConfig) preview.PDFResolver {
	return func(ctx context.Context) (preview.PDFConverter, error) {
		return preview.NewPDFConverter(ctx, cfg)
	}
}

// runAction runs action against repository, the INI repository when empty.
func runAction(cmd *cobra.Command, action types.Action, repository string) error {
	if !slices.Contains(types.Actions, action) {
		return fmt.Errorf("invalid action %q (choose from %s, %s, %s)",
			action, types.ActionPull, types.ActionPush, types.ActionPreview)
	}
	s, err := openSession(cmd, repository)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Run(cmd.Context(), action)
}

// optionalRepository reads the [repository] positional argument.
func optionalRepository(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
