package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/metrics"
	"github.com/DevSymphony/symkt/internal/runner"
	"github.com/DevSymphony/symkt/internal/util/env"
	"github.com/spf13/cobra"
)

var (
	// verbose is a global flag for verbose output
	verbose bool

	// configPath overrides the project config location
	configPath string

	// projectDir is the Kotlin project root
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   "symkt",
	Short: "symkt - Kotlin lint runner for detekt, ktlint and ktfmt",
	Long: `symkt runs the Kotlin command-line linters and collects their findings
into one list of diagnostics per file.

Features:
  - detekt, ktlint and ktfmt behind a single command
  - Text, JSON, GitHub annotation and SARIF reports
  - Watch mode that lints or formats files on save
  - MCP server for AI coding assistants`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: <dir>/.sym/kotlin.yml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project root directory")
}

// project is the loaded workspace a command operates on.
type project struct {
	root       string
	configPath string
	cfg        *config.Config
}

// loadProject resolves the project root and loads its config.
func loadProject() (*project, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project directory not found: %s", root)
	}

	// Tool path overrides and tokens may live in .sym/.env.
	if _, err := env.Apply(env.FilePath(root)); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", env.FilePath(root), err)
	}

	path := configPath
	if path == "" {
		path = config.Path(root)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return &project{root: root, configPath: path, cfg: cfg}, nil
}

// newSet builds the controllers of the selected tools (enabled tools when
// tools is empty). Progress lines go to stderr in verbose mode.
func (p *project) newSet(tools []string, rec *metrics.Recorder) (*runner.Set, error) {
	return runner.NewSet(linter.Global(), p.cfg, tools, runner.SetOptions{
		Logger:  progressLogger(verbose),
		Metrics: rec,
	})
}

// configure applies the project settings to every registered tool.
func (p *project) configure() {
	settings := p.cfg.Settings()
	reg := linter.Global()
	for _, name := range reg.GetAllToolNames() {
		l, err := reg.GetLinter(name)
		if err != nil {
			continue
		}
		if c, ok := l.(linter.Configurable); ok {
			c.Configure(settings)
		}
	}
}

// targets resolves command-line paths against the current directory.
func (p *project) targets(args []string) ([]string, error) {
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("path not found: %s", arg)
		}
		targets = append(targets, abs)
	}
	return targets, nil
}

func progressLogger(enabled bool) *log.Logger {
	if !enabled {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.Ltime)
}
