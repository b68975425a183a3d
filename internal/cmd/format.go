package cmd

import (
	"fmt"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/spf13/cobra"
)

var formatTool string

var formatCmd = &cobra.Command{
	Use:   "format [files...]",
	Short: "Format Kotlin sources in place",
	Long: `Rewrite Kotlin files with ktlint (-F) or ktfmt. Without paths the whole
project is formatted. The formatter defaults to the first enabled tool that
can format.`,
	Example: `  symkt format
  symkt format src/main/kotlin/App.kt --tool ktfmt`,
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatTool, "tool", "t", "", "formatter to use (ktlint|ktfmt)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	targets, err := proj.targets(args)
	if err != nil {
		return err
	}

	tool := formatTool
	if tool == "" {
		tool = defaultFormatter(proj.cfg.EnabledTools(), linter.Global())
		if tool == "" {
			return fmt.Errorf("no enabled tool can format (enable ktlint or ktfmt)")
		}
	}

	set, err := proj.newSet([]string{tool}, nil)
	if err != nil {
		return err
	}

	output, err := set.Format(cmd.Context(), tool, proj.root, targets)
	if err != nil {
		return err
	}

	if verbose && output != nil && output.Stdout != "" {
		fmt.Print(output.Stdout)
	}
	ui.PrintOK(fmt.Sprintf("Formatted with %s", tool))
	return nil
}

// defaultFormatter returns the first of tools registered with a formatter.
func defaultFormatter(tools []string, reg *linter.Registry) string {
	for _, name := range tools {
		if _, err := reg.GetFormatter(name); err == nil {
			return name
		}
	}
	return ""
}
