package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/mcp"
	"github.com/DevSymphony/symkt/internal/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server to integrate with LLM tools",
	Long: `Start Model Context Protocol (MCP) server.
LLM-based coding tools can lint and format Kotlin through stdio.

Tools provided by MCP server:
- lint_kotlin: Run the enabled linters and report diagnostics per file
- format_kotlin: Format files with ktlint or ktfmt
- list_diagnostics: Show the diagnostics of the latest runs
- explain_rule: Link a rule to its documentation

Communicates via stdio for integration with Claude Desktop, Claude Code, Cursor, and other MCP clients.`,
	Example: `  symkt mcp
  symkt mcp --dir path/to/project`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	// stdout carries the protocol; progress goes to stderr in verbose mode.
	set, err := runner.NewSet(linter.Global(), proj.cfg, nil, runner.SetOptions{Logger: progressLogger(verbose)})
	if err != nil {
		return err
	}
	if len(set.Tools()) == 0 {
		return fmt.Errorf("no tools enabled in %s", proj.configPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(proj.root, version, set, linter.Global())
	return server.Start(ctx)
}
