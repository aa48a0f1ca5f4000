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
	// validateAllFlag validates every module in the registry snapshot.
	validateAllFlag bool
	// validateTargetFlag selects the target the plan is checked against.
	validateTargetFlag string

	validateCmd = &cobra.Command{
		Use:   "validate [modules...]",
		Short: "Validate modules and their deployment plan without writing anything",
		Long: `Validate the requested modules end to end.

Runs the full pipeline - schema validation, dependency resolution,
ordering, and resource conflict checks - but stops before emission, so
nothing is ever written to disk.

Examples:
  deckhand validate apache
  deckhand validate --all
  deckhand validate -t ansible sendmail`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !validateAllFlag {
				return errors.New("either name at least one module or pass --all")
			}
			if len(args) > 0 && validateAllFlag {
				return errors.New("--all cannot be combined with explicit module names")
			}

			names, err := parseModuleNames(args)
			if err != nil {
				return err
			}
			target := modulefile.Target(validateTargetFlag)
			if err := target.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			result, err := generate.Run(cmd.Context(), logger, generate.Request{
				Modules:      names,
				All:          validateAllFlag,
				Target:       target,
				RegistryPath: cfg.RegistryPath,
				ModulesDir:   cfg.ModulesDir,
				ValidateOnly: true,
			})
			if err != nil {
				return failRun(cmd, err)
			}

			printWarnings(cmd, result.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "%s plan is valid for target %s (%d modules: %s)\n",
				SuccessStyle.Render("✓"),
				target,
				len(result.Plan.Modules),
				joinModuleNames(result.Plan.Names()),
			)
			return nil
		},
	}
)

func init() {
	validateCmd.Flags().BoolVar(&validateAllFlag, "all", false, "validate every module in the registry")
	validateCmd.Flags().StringVarP(&validateTargetFlag, "target", "t", "docker", "deployment target to validate against")
}
