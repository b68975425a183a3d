package cmd

import (
	"context"
	"fmt"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/github"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/DevSymphony/symkt/internal/util/env"
	"github.com/spf13/cobra"
)

var (
	installForce   bool
	installVersion string
)

var installCmd = &cobra.Command{
	Use:   "install [tools...]",
	Short: "Download detekt, ktlint or ktfmt into the tools directory",
	Long: `Install the given tools, or every enabled tool, into the tools directory
(~/.sym/tools unless toolsDir is set in the project config).

detekt-cli and ktlint come from their GitHub releases, ktfmt from Maven
Central. Tools already installed are skipped unless --force is set.
An explicit --version is recorded in the project config so later runs use
the installed copy.
--version latest looks up the newest GitHub release (detekt and ktlint);
set GITHUB_TOKEN (environment or .sym/.env) to raise the API rate limit.`,
	Example: `  symkt install
  symkt install ktlint --version 1.4.1 --force
  symkt install detekt ktlint --version latest`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "reinstall even if already installed")
	installCmd.Flags().StringVar(&installVersion, "version", "", "tool version to install, or \"latest\"")
}

func runInstall(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	proj.configure()

	tools := args
	if len(tools) == 0 {
		tools = proj.cfg.EnabledTools()
	}
	if installVersion != "" && installVersion != "latest" && len(tools) != 1 {
		return fmt.Errorf("--version needs exactly one tool")
	}

	settings := proj.cfg.Settings()
	reg := linter.Global()
	gh := github.NewClient("github.com", env.Get(proj.root, "GITHUB_TOKEN"))

	failed := 0
	pinned := false
	for _, name := range tools {
		l, err := reg.GetLinter(name)
		if err != nil {
			return err
		}

		version := installVersion
		if version == "latest" {
			version, err = latestVersion(cmd.Context(), gh, l)
			if err != nil {
				ui.PrintError(fmt.Sprintf("%s: %v", name, err))
				failed++
				continue
			}
		}

		ui.PrintInfo(fmt.Sprintf("Installing %s %s...", name, displayVersion(version, l)))
		err = l.Install(cmd.Context(), linter.InstallConfig{
			ToolsDir: settings.ToolsDir,
			Version:  version,
			Force:    installForce,
		})
		if err != nil {
			ui.PrintError(fmt.Sprintf("%s: %v", name, err))
			failed++
			continue
		}
		ui.PrintOK(fmt.Sprintf("%s installed", name))

		if version != "" {
			tc := proj.cfg.Tools[name]
			if tc.Version != version {
				tc.Version = version
				proj.cfg.SetTool(name, tc)
				pinned = true
			}
		}
	}

	fmt.Println(ui.Indent(fmt.Sprintf("Location: %s", settings.ToolsDir)))
	if pinned {
		if err := config.Save(proj.configPath, proj.cfg); err != nil {
			return fmt.Errorf("failed to record installed versions: %w", err)
		}
		fmt.Println(ui.Indent(fmt.Sprintf("Versions recorded in %s", proj.configPath)))
	}
	if failed > 0 {
		return fmt.Errorf("%d tool(s) failed to install", failed)
	}
	return nil
}

// latestVersion resolves the newest released version of l.
func latestVersion(ctx context.Context, gh *github.Client, l linter.Linter) (string, error) {
	rs, ok := l.(linter.ReleaseSource)
	if !ok {
		return "", fmt.Errorf("%s is not released on GitHub, pass an explicit --version", l.Name())
	}
	owner, repo := rs.ReleaseRepo()
	release, err := gh.LatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to look up latest release: %w", err)
	}
	return release.Version(), nil
}

func displayVersion(version string, l linter.Linter) string {
	if version == "" {
		return l.GetCapabilities().Version
	}
	return version
}
