package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

// SubprocessExecutor runs external tools as subprocesses.
type SubprocessExecutor struct {
	// Timeout is the max execution time.
	// Default: 2 minutes
	Timeout time.Duration

	// WorkDir is the working directory used by Execute.
	WorkDir string

	// Env is additional environment variables.
	Env map[string]string
}

// NewSubprocessExecutor creates a new executor.
func NewSubprocessExecutor() *SubprocessExecutor {
	return &SubprocessExecutor{
		Timeout: 2 * time.Minute,
		Env:     make(map[string]string),
	}
}

// Execute runs a command in the executor's WorkDir and returns its output.
func (e *SubprocessExecutor) Execute(ctx context.Context, name string, args ...string) (*ToolOutput, error) {
	return e.ExecuteIn(ctx, e.WorkDir, name, args...)
}

// ExecuteIn runs a command in dir and returns its output.
//
// Stdout and stderr are captured for every exit code. A non-zero exit is
// reported through ToolOutput.ExitCode, not as an error. An error is returned
// when the process cannot be started or when ctx ends before it exits; in the
// latter case the partial output is returned alongside the context error.
func (e *SubprocessExecutor) ExecuteIn(ctx context.Context, dir, name string, args ...string) (*ToolOutput, error) {
	// Apply timeout
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 5 * time.Second

	if dir != "" {
		cmd.Dir = dir
	}

	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.envSlice()...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	output := &ToolOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		output.ExitCode = -1
		return output, fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
			return output, nil // Return output even on non-zero exit
		}
		return nil, fmt.Errorf("failed to execute %s: %w", name, err)
	}

	return output, nil
}

func (e *SubprocessExecutor) envSlice() []string {
	result := make([]string, 0, len(e.Env))
	for k, v := range e.Env {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}
