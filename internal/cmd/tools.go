package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show the registered tools and whether they are available",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// toolStatus is one row of the tools table.
type toolStatus struct {
	caps    linter.Capabilities
	enabled bool
	err     error
}

func runTools(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	proj.configure()

	enabled := make(map[string]bool)
	for _, name := range proj.cfg.EnabledTools() {
		enabled[name] = true
	}

	statuses := checkTools(cmd.Context(), linter.Global(), enabled)
	printTools(cmd.OutOrStdout(), statuses, ui.UseColor(cmd.OutOrStdout()))
	return nil
}

// checkTools probes every registered tool concurrently.
func checkTools(ctx context.Context, reg *linter.Registry, enabled map[string]bool) []toolStatus {
	names := reg.GetAllToolNames()
	statuses := make([]toolStatus, len(names))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var g errgroup.Group
	for i, name := range names {
		l, err := reg.GetLinter(name)
		if err != nil {
			continue
		}
		statuses[i] = toolStatus{caps: l.GetCapabilities(), enabled: enabled[name]}
		g.Go(func() error {
			statuses[i].err = l.CheckAvailability(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

func printTools(w io.Writer, statuses []toolStatus, color bool) {
	_, _ = fmt.Fprintf(w, "%-8s %-9s %-14s %-8s %s\n", "TOOL", "VERSION", "MODE", "ENABLED", "STATUS")
	for _, s := range statuses {
		var modes []string
		if s.caps.Lints {
			modes = append(modes, "lint")
		}
		if s.caps.Formats {
			modes = append(modes, "format")
		}

		status := ui.Paint(color, ui.Green, "available")
		if s.err != nil {
			status = ui.Paint(color, ui.Red, s.err.Error())
		}

		enabled := "no"
		if s.enabled {
			enabled = "yes"
		}

		_, _ = fmt.Fprintf(w, "%-8s %-9s %-14s %-8s %s\n", s.caps.Name, s.caps.Version, strings.Join(modes, ","), enabled, status)
	}
}
