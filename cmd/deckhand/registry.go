// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckhand-cli/pkg/registry"
)

var (
	registryCmd = &cobra.Command{
		Use:   "registry",
		Short: "Inspect the module registry",
		Long:  "Inspect the registry snapshot deckhand resolves modules against.",
	}

	registryListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every module in the registry snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reg, err := registry.Load(cfg.RegistryPath)
			if err != nil {
				return failRun(cmd, err)
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintln(stdout, TitleStyle.Render("Registry")+SubtitleStyle.Render(" "+cfg.RegistryPath))
			for _, name := range reg.Names() {
				entry, err := reg.Resolve(name)
				if err != nil {
					return failRun(cmd, err)
				}
				fmt.Fprintf(stdout, "  %s %s  %s%s\n",
					ModuleStyle.Render(string(entry.Name)),
					entry.Version,
					formatTargets(entry),
					formatStatus(entry),
				)
			}
			fmt.Fprintf(stdout, "\n%d modules\n", reg.Len())
			return nil
		},
	}
)

func init() {
	registryCmd.AddCommand(registryListCmd)
}

// formatTargets renders an entry's declared deployment targets.
func formatTargets(entry *registry.Entry) string {
	targets := ""
	if entry.Deployment.Docker {
		targets += "docker"
	}
	if entry.Deployment.Ansible {
		if targets != "" {
			targets += ","
		}
		targets += "ansible"
	}
	if targets == "" {
		targets = "none"
	}
	return VerboseStyle.Render("[" + targets + "]")
}

// formatStatus renders a non-stable lifecycle status as a suffix.
func formatStatus(entry *registry.Entry) string {
	switch entry.Status.OrDefault() {
	case registry.StatusDeprecated:
		return "  " + WarningStyle.Render("deprecated")
	case registry.StatusExperimental:
		return "  " + VerboseStyle.Render("experimental")
	default:
		return ""
	}
}
