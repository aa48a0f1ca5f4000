// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for deckhand.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"deckhand-cli/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug-level logging.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string
	// registryFlag overrides the configured registry path.
	registryFlag string
	// modulesDirFlag overrides the configured modules directory.
	modulesDirFlag string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "deckhand",
		Short: "Deployment artifact generator for declarative service modules",
		Long: TitleStyle.Render("deckhand") + SubtitleStyle.Render(" - Deployment artifact generator for declarative service modules") + `

deckhand turns a registry of versioned service modules into ready-to-run
deployment artifacts. Each module describes one service in a module.yml
document; deckhand validates the documents, resolves dependencies into a
deterministic plan, checks for port and volume conflicts, and emits a
Docker Compose file or an Ansible deployment document.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Point deckhand at a registry.yml and a modules directory
  2. Request the modules you want deployed
  3. Apply the generated artifact with your usual tooling

` + SubtitleStyle.Render("Examples:") + `
  deckhand generate apache php        Generate docker-compose.yml
  deckhand generate --all             Generate over the whole registry
  deckhand generate -t ansible mail   Generate an Ansible deployment doc
  deckhand validate apache            Validate without writing anything
  deckhand registry list              List the registry snapshot
  deckhand show apache                Render a module summary`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/deckhand/config.yml)")
	rootCmd.PersistentFlags().StringVar(&registryFlag, "registry", "", "registry document path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&modulesDirFlag, "modules-dir", "", "modules directory (overrides config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(showCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig resolves the runtime configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return nil, err
	}
	if registryFlag != "" {
		cfg.RegistryPath = registryFlag
	}
	if modulesDirFlag != "" {
		cfg.ModulesDir = modulesDirFlag
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newLogger builds the CLI logger honoring the verbosity setting.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(os.Stderr)
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
