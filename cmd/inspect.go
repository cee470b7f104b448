package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-mcp/internal/logging"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the root accessibility node without starting a server",
	Long: `Create the accessibility provider, fetch the root node, and print it.
A quick way to verify the platform backend and OS permissions before
wiring up an agent.

Examples:
  a11y-mcp inspect --pid 52114
  a11y-mcp inspect --demo --children`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("pid", 0, "Target process ID (0 = this process)")
	inspectCmd.Flags().Bool("demo", false, "Inspect the built-in sample tree")
	inspectCmd.Flags().Bool("children", false, "Also print the root's direct children")
	inspectCmd.Flags().String("format", "yaml", "Output format: yaml, json")
}

func runInspect(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logging.Setup(level)
	if err != nil {
		return err
	}
	pid, _ := cmd.Flags().GetInt("pid")
	demo, _ := cmd.Flags().GetBool("demo")

	provider, err := buildProvider(demo, pid, log)
	if err != nil {
		return fmt.Errorf("failed to create accessibility provider: %w", err)
	}

	root, err := provider.GetRoot()
	if err != nil {
		return fmt.Errorf("failed to get root: %w", err)
	}

	out := map[string]any{"root": root}
	if withChildren, _ := cmd.Flags().GetBool("children"); withChildren {
		children, err := provider.GetChildren(root.ID)
		if err != nil {
			return fmt.Errorf("failed to get children: %w", err)
		}
		out["children"] = children
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		return renderYAML(cmd, out)
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	return fmt.Errorf("unsupported format: %q (use yaml or json)", format)
}

// renderYAML prints v as YAML via its JSON form, so the output matches the
// wire field names rather than Go struct layout.
func renderYAML(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
