package ktfmt

import (
	"context"
	"fmt"
	"strings"

	"github.com/DevSymphony/symkt/internal/linter"
)

// execute runs ktfmt in dry-run mode.
func (l *Linter) execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	name, prefix, err := l.command(req.ExecutablePath)
	if err != nil {
		return nil, err
	}

	args := append(prefix, checkArgs(req)...)
	output, err := l.executor.ExecuteIn(ctx, req.WorkDir, name, args...)
	if err != nil {
		return output, fmt.Errorf("ktfmt execution failed: %w", err)
	}

	return output, nil
}

// format runs ktfmt on the targets. Any non-zero exit is an error.
func (l *Linter) format(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	name, prefix, err := l.command(req.ExecutablePath)
	if err != nil {
		return nil, err
	}

	args := append(prefix, formatArgs(req)...)
	output, err := l.executor.ExecuteIn(ctx, req.WorkDir, name, args...)
	if err != nil {
		return output, fmt.Errorf("ktfmt execution failed: %w", err)
	}

	if output.ExitCode != 0 {
		return output, fmt.Errorf("ktfmt exited with code %d: %s", output.ExitCode, strings.TrimSpace(output.Stderr))
	}

	return output, nil
}

// formatArgs builds: ktfmt <extra args> <targets>
func formatArgs(req linter.Request) []string {
	args := make([]string, 0, len(req.Args)+len(req.Targets)+1)
	args = append(args, req.Args...)
	return append(args, req.TargetsOrWorkDir()...)
}

// checkArgs builds: ktfmt --dry-run <extra args> <targets>
func checkArgs(req linter.Request) []string {
	return append([]string{"--dry-run"}, formatArgs(req)...)
}
