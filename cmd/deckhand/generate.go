// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"deckhand-cli/internal/generate"
	"deckhand-cli/pkg/modulefile"
)

var (
	// targetFlag selects the artifact emitter.
	targetFlag string
	// allFlag generates over every module in the registry snapshot.
	allFlag bool
	// outputFlag is the artifact destination path.
	outputFlag string
	// envOverridesFlag is an optional TOML file of environment overrides.
	envOverridesFlag string

	generateCmd = &cobra.Command{
		Use:   "generate [modules...]",
		Short: "Generate a deployment artifact from registry modules",
		Long: `Generate a deployment artifact for the requested modules.

deckhand resolves the transitive dependency closure of the requested
modules, orders it so every dependency is provisioned before its
dependents, checks the union of declared resources for conflicts, and
only then writes the artifact. On any failure nothing is written.

Examples:
  deckhand generate apache php
  deckhand generate --all
  deckhand generate -t ansible sendmail -o site/deploy.yml
  deckhand generate apache --env-overrides overrides.toml`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !allFlag {
				return errors.New("either name at least one module or pass --all")
			}
			if len(args) > 0 && allFlag {
				return errors.New("--all cannot be combined with explicit module names")
			}

			names, err := parseModuleNames(args)
			if err != nil {
				return err
			}
			target := modulefile.Target(targetFlag)
			if err := target.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			result, err := generate.Run(cmd.Context(), logger, generate.Request{
				Modules:          names,
				All:              allFlag,
				Target:           target,
				RegistryPath:     cfg.RegistryPath,
				ModulesDir:       cfg.ModulesDir,
				OutputPath:       outputFlag,
				OutputDir:        cfg.OutputDir,
				EnvOverridesPath: envOverridesFlag,
				DefaultNetwork:   cfg.DefaultNetwork,
			})
			if err != nil {
				return failRun(cmd, err)
			}

			printWarnings(cmd, result.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s (%d modules: %s)\n",
				SuccessStyle.Render("✓"),
				result.OutputPath,
				len(result.Plan.Modules),
				joinModuleNames(result.Plan.Names()),
			)
			return nil
		},
	}
)

func init() {
	generateCmd.Flags().StringVarP(&targetFlag, "target", "t", "docker", "deployment target (docker or ansible)")
	generateCmd.Flags().BoolVar(&allFlag, "all", false, "generate over every module in the registry")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "artifact output path (default: emitter's conventional name)")
	generateCmd.Flags().StringVar(&envOverridesFlag, "env-overrides", "", "TOML file with environment variable overrides (docker target only)")
}

// parseModuleNames validates each CLI argument as a module name.
func parseModuleNames(args []string) ([]modulefile.ModuleName, error) {
	names := make([]modulefile.ModuleName, 0, len(args))
	for _, arg := range args {
		name := modulefile.ModuleName(arg)
		if err := name.Validate(); err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// joinModuleNames renders module names as a styled, space-separated list.
func joinModuleNames(names []modulefile.ModuleName) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += " "
		}
		out += ModuleStyle.Render(string(name))
	}
	return out
}

// printWarnings renders accumulated pipeline warnings to stderr.
func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", WarningStyle.Render("!"), warning)
	}
}

// failRun silences cobra's own reporting, renders the classified error with
// its issue catalog entry, and converts it into the matching exit code.
func failRun(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	wrapped := wrapPipelineError(err)

	var exitErr *ExitError
	if errors.As(wrapped, &exitErr) {
		var svcErr *ServiceError
		if errors.As(exitErr.Err, &svcErr) {
			renderServiceError(cmd.ErrOrStderr(), svcErr)
		}
	}
	return wrapped
}
