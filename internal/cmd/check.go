package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DevSymphony/symkt/internal/git"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/report"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/spf13/cobra"
)

var (
	checkFormat       string
	checkToolNames        []string
	checkFailOnIssues bool
	checkChanged      bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Lint Kotlin sources with the enabled tools",
	Long: `Run every enabled tool (or the ones selected with --tool) on the given
files and directories, or on the whole project when no path is given.

The tools run concurrently. Their findings are merged into one report,
ordered by file. With --changed only the Kotlin files that differ from
the git HEAD (including untracked ones) are linted. The command exits with code 1 when issues are found,
unless --fail-on-issues=false is set.`,
	Example: `  symkt check
  symkt check src/main/kotlin --tool ktlint
  symkt check --format sarif > symkt.sarif`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "output format (text|json|github|sarif)")
	checkCmd.Flags().StringSliceVarP(&checkToolNames, "tool", "t", nil, "tools to run (default: enabled tools)")
	checkCmd.Flags().BoolVar(&checkFailOnIssues, "fail-on-issues", true, "exit with code 1 when issues are found")
	checkCmd.Flags().BoolVar(&checkChanged, "changed", false, "only lint Kotlin files changed in git")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(checkFormat)
	if err != nil {
		return err
	}

	proj, err := loadProject()
	if err != nil {
		return err
	}

	targets, err := proj.targets(args)
	if err != nil {
		return err
	}
	if checkChanged {
		targets, err = changedKotlinFiles(cmd.Context(), proj.root, targets)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			ui.PrintOK("No changed Kotlin files")
			return nil
		}
	}

	set, err := proj.newSet(checkToolNames, nil)
	if err != nil {
		return err
	}
	tools := set.Tools()
	if len(tools) == 0 {
		return fmt.Errorf("no tools enabled in %s", proj.configPath)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Running %s\n", strings.Join(tools, ", "))
	}

	diags, errs := set.Lint(cmd.Context(), proj.root, targets)

	out := cmd.OutOrStdout()
	if err := report.Write(out, format, diags, report.Options{
		BasePath: proj.root,
		Color:    format == report.FormatText && ui.UseColor(out),
		Tools:    report.ToolsFrom(linter.Global(), tools),
	}); err != nil {
		return err
	}

	if len(errs) > 0 {
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ui.PrintError(fmt.Sprintf("%s: %v", name, errs[name]))
		}
		if len(errs) == len(tools) {
			return fmt.Errorf("all tools failed")
		}
	}

	if checkFailOnIssues && diags.Count() > 0 {
		os.Exit(1)
	}
	return nil
}

// changedKotlinFiles returns the existing Kotlin files changed in git under
// root, limited to the given paths when any are set.
func changedKotlinFiles(ctx context.Context, root string, within []string) ([]string, error) {
	changed, err := git.ChangedFilesUnder(ctx, root, ".kt", ".kts")
	if err != nil {
		return nil, err
	}
	if len(within) == 0 {
		return changed, nil
	}

	var files []string
	for _, path := range changed {
		if isUnderAny(path, within) {
			files = append(files, path)
		}
	}
	return files, nil
}

func isUnderAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if isUnder(path, dir) {
			return true
		}
	}
	return false
}

// isUnder reports whether path is dir or lies inside it.
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
