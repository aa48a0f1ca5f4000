// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

// showPlainFlag skips markdown rendering and prints the raw summary.
var showPlainFlag bool

var showCmd = &cobra.Command{
	Use:   "show <module>",
	Short: "Render a module's definition as a readable summary",
	Long: `Show one module's registry entry and definition.

Loads the module's definition from the modules directory, validates it,
and renders a markdown summary of its targets, dependencies, ports,
volumes, and environment variables.

Examples:
  deckhand show apache
  deckhand show php --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := modulefile.ModuleName(args[0])
		if err := name.Validate(); err != nil {
			return fmt.Errorf("argument %q: %w", args[0], err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		reg, err := registry.Load(cfg.RegistryPath)
		if err != nil {
			return failRun(cmd, err)
		}
		entry, err := reg.Resolve(name)
		if err != nil {
			return failRun(cmd, err)
		}

		loader := registry.NewDirLoader(cfg.ModulesDir)
		data, err := loader.Load(cmd.Context(), entry.Name, entry.Version)
		if err != nil {
			return failRun(cmd, err)
		}
		def, err := modulefile.ParseBytes(data, string(entry.Name))
		if err != nil {
			return failRun(cmd, err)
		}

		summary := moduleSummary(entry, def)
		if showPlainFlag {
			fmt.Fprint(cmd.OutOrStdout(), summary)
			return nil
		}

		rendered, err := glamour.Render(summary, "dark")
		if err != nil {
			// Terminal rendering is cosmetic; fall back to the raw summary.
			fmt.Fprint(cmd.OutOrStdout(), summary)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showPlainFlag, "plain", false, "print raw markdown without terminal rendering")
}

// moduleSummary builds the markdown summary for one resolved module.
func moduleSummary(entry *registry.Entry, def *modulefile.ModuleDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", def.Name, entry.Version)
	if def.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", def.Description)
	}
	if entry.Status.OrDefault() != registry.StatusStable {
		fmt.Fprintf(&b, "**Status:** %s\n\n", entry.Status)
	}

	targets := make([]string, 0, 2)
	if def.Deployment.Docker {
		targets = append(targets, "docker")
	}
	if def.Deployment.Ansible {
		targets = append(targets, "ansible")
	}
	fmt.Fprintf(&b, "**Targets:** %s\n\n", strings.Join(targets, ", "))

	if len(def.Dependencies) > 0 {
		b.WriteString("## Dependencies\n\n")
		for _, dep := range def.Dependencies {
			fmt.Fprintf(&b, "- %s\n", dep)
		}
		b.WriteString("\n")
	}

	if len(def.Network) > 0 {
		b.WriteString("## Ports\n\n")
		for _, port := range def.Network {
			fmt.Fprintf(&b, "- `%s`", port.Key())
			if port.Description != "" {
				fmt.Fprintf(&b, " - %s", port.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(def.Storage.Volumes) > 0 {
		b.WriteString("## Volumes\n\n")
		for _, vol := range def.Storage.Volumes {
			fmt.Fprintf(&b, "- `%s` (%s)\n", vol.Target, vol.Type.OrDefault())
		}
		b.WriteString("\n")
	}

	if len(def.Environment) > 0 {
		b.WriteString("## Environment\n\n")
		for _, env := range def.Environment {
			fmt.Fprintf(&b, "- `%s`", env.Name)
			if env.Default != "" {
				fmt.Fprintf(&b, " (default: `%s`)", env.Default)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(def.Integration.Provides) > 0 {
		fmt.Fprintf(&b, "**Provides:** %s\n", strings.Join(def.Integration.Provides, ", "))
	}

	return b.String()
}
