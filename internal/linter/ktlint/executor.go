package ktlint

import (
	"context"
	"fmt"
	"strings"

	"github.com/DevSymphony/symkt/internal/linter"
)

// execute runs ktlint in check mode.
//
// ktlint exits 1 when it finds violations; the findings are still in the
// output, so that is not treated as an error.
func (l *Linter) execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	ktlintPath := l.resolve(req.ExecutablePath)
	if ktlintPath == "" {
		return nil, fmt.Errorf("ktlint not found: run `symkt install ktlint` or set executablePath")
	}

	output, err := l.executor.ExecuteIn(ctx, req.WorkDir, ktlintPath, lintArgs(req)...)
	if err != nil {
		return output, fmt.Errorf("ktlint execution failed: %w", err)
	}

	return output, nil
}

// format runs ktlint -F. Any non-zero exit is reported as an error, since
// it means some files could not be fixed.
func (l *Linter) format(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	ktlintPath := l.resolve(req.ExecutablePath)
	if ktlintPath == "" {
		return nil, fmt.Errorf("ktlint not found: run `symkt install ktlint` or set executablePath")
	}

	output, err := l.executor.ExecuteIn(ctx, req.WorkDir, ktlintPath, formatArgs(req)...)
	if err != nil {
		return output, fmt.Errorf("ktlint execution failed: %w", err)
	}

	if output.ExitCode != 0 {
		return output, fmt.Errorf("ktlint exited with code %d: %s", output.ExitCode, strings.TrimSpace(output.Combined()))
	}

	return output, nil
}

// lintArgs builds: ktlint <extra args> <targets>
func lintArgs(req linter.Request) []string {
	args := make([]string, 0, len(req.Args)+len(req.Targets)+1)
	args = append(args, req.Args...)
	return append(args, req.TargetsOrWorkDir()...)
}

// formatArgs builds: ktlint -F <extra args> <targets>
func formatArgs(req linter.Request) []string {
	return append([]string{"-F"}, lintArgs(req)...)
}
