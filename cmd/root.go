package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-mcp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "a11y-mcp",
	Short: "Expose an application's accessibility tree over a JSON protocol",
	Long: `a11y-mcp serves a live view of an application's accessibility tree to
AI agents over a small JSON protocol: query the UI structure, resolve
individual nodes, search by name, and invoke actions (press, focus,
set value) without touching the GUI process directly.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
}
