package detekt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DevSymphony/symkt/internal/linter"
)

// execute runs detekt in the request's work directory.
func (l *Linter) execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	detektPath := l.resolve(req.ExecutablePath)
	if detektPath == "" {
		return nil, fmt.Errorf("detekt not found: run `symkt install detekt` or set executablePath")
	}

	// detekt command format:
	// detekt --input <path>[,<path>...] [--config detekt.yml] <extra args>
	args := buildArgs(req)

	output, err := l.executor.ExecuteIn(ctx, req.WorkDir, detektPath, args...)
	if err != nil {
		return output, fmt.Errorf("detekt execution failed: %w", err)
	}

	// detekt exits 2 when findings exceed the build threshold.
	// This is expected, not an error.
	return output, nil
}

// buildArgs builds the detekt command line for a request.
func buildArgs(req linter.Request) []string {
	args := []string{"--input", strings.Join(req.TargetsOrWorkDir(), ",")}

	if req.WorkDir != "" && !hasConfigArg(req.Args) {
		configPath := filepath.Join(req.WorkDir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			args = append(args, "--config", configPath)
		}
	}

	return append(args, req.Args...)
}

func hasConfigArg(args []string) bool {
	for _, a := range args {
		if a == "--config" || a == "-c" || strings.HasPrefix(a, "--config=") {
			return true
		}
	}
	return false
}
