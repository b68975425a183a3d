package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/linter/detekt"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the symkt config for the current project",
	Long: `Create .sym/kotlin.yml with the tools to run and their on-save actions.

This command:
  1. Asks which tools to enable and what to do on save
  2. Writes .sym/kotlin.yml
  3. Optionally writes a starter detekt.yml
  4. Optionally registers the MCP server for AI tools`,
	RunE: runInit,
}

var (
	initForce       bool
	initYes         bool
	initDetekt      bool
	skipMCPRegister bool
	registerMCPOnly bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the defaults without prompting")
	initCmd.Flags().BoolVar(&initDetekt, "detekt-config", false, "Write a starter detekt.yml")
	initCmd.Flags().BoolVar(&skipMCPRegister, "skip-mcp", false, "Skip MCP server registration prompt")
	initCmd.Flags().BoolVar(&registerMCPOnly, "register-mcp", false, "Register MCP server only (skip config init)")
}

// onSaveActions are the choices offered per tool, in prompt order.
var onSaveActions = []string{"Lint on save", "Format on save", "Nothing"}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return err
	}

	// MCP registration only mode
	if registerMCPOnly {
		ui.PrintTitle("MCP", "Registering symkt MCP server")
		promptMCPRegistration(root)
		return nil
	}

	path := configPath
	if path == "" {
		path = config.Path(root)
	}

	if config.Exists(path) && !initForce {
		ui.PrintWarn(fmt.Sprintf("%s already exists", path))
		fmt.Println("Use --force flag to overwrite")
		os.Exit(1)
	}

	cfg := config.Default()
	if !initYes {
		cfg, err = promptConfig()
		if err != nil {
			fmt.Println("\nSetup cancelled")
			return nil
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	ui.PrintOK("kotlin.yml created")
	fmt.Println(ui.Indent(fmt.Sprintf("Location: %s", path)))

	if initDetekt && cfg.Tool("detekt").Enable {
		written, err := writeDetektConfig(root, initForce)
		switch {
		case err != nil:
			ui.PrintWarn(fmt.Sprintf("Failed to create %s: %v", detekt.ConfigFile, err))
		case written:
			ui.PrintOK(fmt.Sprintf("%s created", detekt.ConfigFile))
		default:
			ui.PrintInfo(fmt.Sprintf("%s already exists, kept", detekt.ConfigFile))
		}
	}

	// MCP registration prompt
	if !skipMCPRegister && !initYes {
		promptMCPRegistration(root)
	}

	fmt.Println()
	ui.PrintDone("Initialization complete")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println(ui.Indent("Run 'symkt install' to download the enabled tools"))
	fmt.Println(ui.Indent("Run 'symkt check' to lint the project"))
	fmt.Println(ui.Indent("Commit .sym/ folder to share with your team"))
	return nil
}

// promptConfig asks, per tool, whether to enable it and what to do on save.
func promptConfig() (*config.Config, error) {
	cfg := config.Default()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ {{ . | green }}",
	}

	for _, name := range config.KnownTools {
		enable := promptui.Prompt{
			Label:     fmt.Sprintf("Enable %s", name),
			IsConfirm: true,
			Default:   "y",
		}
		result, err := enable.Run()
		if err != nil && err != promptui.ErrAbort {
			return nil, err
		}
		if err == promptui.ErrAbort || strings.ToLower(result) == "n" {
			cfg.SetTool(name, config.ToolConfig{Enable: config.Bool(false)})
			continue
		}

		items := onSaveActions
		if name == "detekt" {
			items = []string{onSaveActions[0], onSaveActions[2]}
		}
		selectPrompt := promptui.Select{
			Label:     fmt.Sprintf("When a file is saved, %s should", name),
			Items:     items,
			Templates: templates,
			Size:      len(items),
		}
		_, action, err := selectPrompt.Run()
		if err != nil {
			return nil, err
		}
		cfg.SetTool(name, onSaveConfig(action))
	}

	return cfg, nil
}

// onSaveConfig maps a prompt answer to tool settings.
func onSaveConfig(action string) config.ToolConfig {
	tc := config.ToolConfig{Enable: config.Bool(true)}
	switch action {
	case onSaveActions[0]:
		tc.RunOnSave = config.Bool(true)
		tc.FormatOnSave = config.Bool(false)
	case onSaveActions[1]:
		tc.RunOnSave = config.Bool(false)
		tc.FormatOnSave = config.Bool(true)
	default:
		tc.RunOnSave = config.Bool(false)
		tc.FormatOnSave = config.Bool(false)
	}
	return tc
}

// detektStarter is a small detekt.yml enabling the most common style rules.
type detektStarter struct {
	Build struct {
		MaxIssues int `yaml:"maxIssues"`
	} `yaml:"build"`
	Config struct {
		Validation bool `yaml:"validation"`
	} `yaml:"config"`
	Style      map[string]detektRule `yaml:"style"`
	Complexity map[string]detektRule `yaml:"complexity"`
}

type detektRule struct {
	Active        bool `yaml:"active"`
	MaxLineLength int  `yaml:"maxLineLength,omitempty"`
	Threshold     int  `yaml:"threshold,omitempty"`
}

// writeDetektConfig writes detekt.yml into root unless it exists and force
// is unset. It reports whether the file was written.
func writeDetektConfig(root string, force bool) (bool, error) {
	path := filepath.Join(root, detekt.ConfigFile)
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	var starter detektStarter
	starter.Config.Validation = true
	starter.Style = map[string]detektRule{
		"MagicNumber":    {Active: true},
		"MaxLineLength":  {Active: true, MaxLineLength: 120},
		"WildcardImport": {Active: true},
	}
	starter.Complexity = map[string]detektRule{
		"LongMethod":       {Active: true, Threshold: 60},
		"ComplexCondition": {Active: true, Threshold: 4},
	}

	data, err := yaml.Marshal(&starter)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}
