package cmd

import (
	"fmt"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/spf13/cobra"
)

// version will be set by build flags from cmd/symkt/main.go
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of symkt and the default version of each tool.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "symkt version %s\n", version)
		if !verbose {
			return
		}
		reg := linter.Global()
		for _, name := range reg.GetAllToolNames() {
			if l, err := reg.GetLinter(name); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", name, l.GetCapabilities().Version)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version string (called from main.go)
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version string
func GetVersion() string {
	return version
}
