//go:build mage

// Package main contains Mage build targets for readme-sync developer tooling.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/readme-sync/internal/config"
	"github.com/pdiddy/readme-sync/internal/container"
	"github.com/pdiddy/readme-sync/internal/preview"
	"github.com/pdiddy/readme-sync/internal/secrets"
)

const (
	binDir  = "bin"
	binName = "readme-sync"
	cmdPkg  = "./cmd/readme-sync"
)

// configTemplate is written by Init. Empty values are filled in by the user;
// readme_sha and readme_path are maintained by pull and push.
var configTemplate = fmt.Sprintf(`[%s]
%s = 
%s = 
%s = %s
%s = %s
; leave empty to read %s/%s or $%s
%s = 
%s = %s
%s = 
%s = 
`,
	config.SectionGitHub,
	config.KeyUsername,
	config.KeyRepository,
	config.KeyAPIURL, config.DefaultAPIURL,
	config.KeyAccept, config.DefaultAccept,
	secrets.DefaultDir, secrets.KeyGitHubToken, secrets.EnvGitHubToken,
	config.KeyAccessToken,
	config.KeyBranch, config.DefaultBranch,
	config.KeyReadmeSHA,
	config.KeyReadmePath,
)

// Init writes a config.ini template and creates the secrets directory.
// An existing config.ini is left alone.
func Init() error {
	if _, err := os.Stat(config.DefaultFile); err == nil {
		fmt.Printf("%s already exists, leaving it alone\n", config.DefaultFile)
	} else {
		if err := os.WriteFile(config.DefaultFile, []byte(configTemplate), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", config.DefaultFile, err)
		}
		fmt.Println("  ", config.DefaultFile)
	}
	if err := os.MkdirAll(secrets.DefaultDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", secrets.DefaultDir, err)
	}
	fmt.Println("  ", secrets.DefaultDir)
	fmt.Println("Fill in username, repository, and a token, then run: readme-sync pull")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Install builds and copies the binary to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binName), filepath.Join(binDir, binName))
}

// Image pulls the wkhtmltopdf image used by the container PDF backend.
func Image(ctx context.Context) error {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return err
	}
	if err := rt.EnsureImage(ctx, preview.DefaultPDFImage); err != nil {
		return err
	}
	fmt.Printf("%s has %s\n", rt.Name(), preview.DefaultPDFImage)
	return nil
}

// Stats prints project metrics: Go production/test LOC and Markdown word count.
func Stats() error {
	var prod, test, words int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || d.Name() == ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case strings.HasSuffix(path, "_test.go"):
			n, err := countLines(path)
			test += n
			return err
		case filepath.Ext(path) == ".go":
			n, err := countLines(path)
			prod += n
			return err
		case filepath.Ext(path) == ".md":
			data, err := os.ReadFile(path)
			words += len(bytes.Fields(data))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	fmt.Printf("Words (Markdown):               %d\n", words)
	return nil
}

// countLines counts non-blank lines in path.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return n, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
