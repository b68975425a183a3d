package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/metrics"
)

// ErrSuperseded is returned by a run that was cancelled because a newer run
// of the same tool started. Superseded runs publish nothing.
var ErrSuperseded = errors.New("run superseded by a newer invocation")

// Sink receives the diagnostics of completed runs.
// diagnostic.Collection satisfies it.
type Sink interface {
	Replace(diagnostic.ByFile)
	Delete(path string)
	Clear()
}

// Result is the outcome of a completed lint run.
type Result struct {
	RunID       string
	Tool        string
	Diagnostics diagnostic.ByFile
	Output      *linter.ToolOutput
	Duration    time.Duration
}

// Options configures a Controller.
type Options struct {
	// Formatter enables Format. Optional.
	Formatter linter.Formatter

	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger

	// Metrics records run outcomes. Optional.
	Metrics *metrics.Recorder
}

// Controller owns the single in-flight invocation of one tool.
//
// Starting a run (or a format) cancels the one in flight and waits for its
// process to exit, so at most one process per tool runs at a time. Only the
// newest run publishes to the sink.
type Controller struct {
	linter    linter.Linter
	formatter linter.Formatter
	sink      Sink
	logger    *log.Logger
	metrics   *metrics.Recorder

	mu      sync.Mutex
	current *slot
}

type slot struct {
	id         string
	cancel     context.CancelFunc
	done       chan struct{}
	superseded bool // guarded by Controller.mu
}

// New creates a controller for l publishing into sink.
func New(l linter.Linter, sink Sink, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		linter:    l,
		formatter: opts.Formatter,
		sink:      sink,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Tool returns the name of the controlled tool.
func (c *Controller) Tool() string {
	return c.linter.Name()
}

// CanFormat reports whether Format is available.
func (c *Controller) CanFormat() bool {
	return c.formatter != nil
}

// Run lints the request targets.
//
// The sink entries for the targeted files are cleared up front (all entries
// for a directory run). When the tool exits, its combined output is parsed
// once and the result replaces the sink entries file by file.
func (c *Controller) Run(ctx context.Context, req linter.Request) (*Result, error) {
	req, err := absRequest(req)
	if err != nil {
		return nil, err
	}

	s, runCtx := c.begin(ctx)
	defer c.end(s)

	tool := c.Tool()
	start := time.Now()
	c.logger.Printf("[%s] Running %s on: %s", shortID(s.id), tool, strings.Join(req.TargetsOrWorkDir(), " "))

	c.withSlot(s, func() { c.clearTargets(req) })

	output, err := c.linter.Execute(runCtx, req)
	elapsed := time.Since(start)
	if err != nil {
		if c.isSuperseded(s) {
			c.logger.Printf("[%s] %s run superseded", shortID(s.id), tool)
			c.metrics.RecordRun(tool, metrics.OutcomeSuperseded, elapsed)
			return nil, ErrSuperseded
		}
		c.logger.Printf("[%s] %s error: %v", shortID(s.id), tool, err)
		c.metrics.RecordRun(tool, metrics.OutcomeError, elapsed)
		return nil, err
	}

	c.logger.Printf("[%s] %s process exited with code: %d", shortID(s.id), tool, output.ExitCode)

	diags := c.linter.ParseOutput(output, req.WorkDir)

	published := c.withSlot(s, func() { c.sink.Replace(diags) })
	if !published {
		c.logger.Printf("[%s] %s run superseded", shortID(s.id), tool)
		c.metrics.RecordRun(tool, metrics.OutcomeSuperseded, elapsed)
		return nil, ErrSuperseded
	}

	c.logger.Printf("[%s] Found %d issue(s)", shortID(s.id), diags.Count())
	c.metrics.RecordRun(tool, metrics.OutcomeOK, elapsed)
	c.metrics.RecordDiagnostics(tool, diags.Count())

	return &Result{
		RunID:       s.id,
		Tool:        tool,
		Diagnostics: diags,
		Output:      output,
		Duration:    elapsed,
	}, nil
}

// Format formats the request targets. It shares the slot with Run, so a
// format cancels an in-flight lint of the same tool and vice versa.
func (c *Controller) Format(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	if c.formatter == nil {
		return nil, fmt.Errorf("%s does not support formatting", c.Tool())
	}

	req, err := absRequest(req)
	if err != nil {
		return nil, err
	}

	s, runCtx := c.begin(ctx)
	defer c.end(s)

	tool := c.Tool()
	start := time.Now()
	c.logger.Printf("[%s] Formatting with %s: %s", shortID(s.id), tool, strings.Join(req.TargetsOrWorkDir(), " "))

	output, err := c.formatter.Format(runCtx, req)
	elapsed := time.Since(start)
	if c.isSuperseded(s) {
		c.logger.Printf("[%s] %s format superseded", shortID(s.id), tool)
		c.metrics.RecordRun(tool, metrics.OutcomeSuperseded, elapsed)
		return nil, ErrSuperseded
	}
	if err != nil {
		c.logger.Printf("[%s] %s error: %v", shortID(s.id), tool, err)
		c.metrics.RecordRun(tool, metrics.OutcomeError, elapsed)
		return output, err
	}

	c.logger.Printf("[%s] %s formatted successfully", shortID(s.id), tool)
	c.metrics.RecordRun(tool, metrics.OutcomeOK, elapsed)
	return output, nil
}

// Cancel kills the in-flight invocation, if any. The cancelled run returns
// a context error and publishes nothing.
func (c *Controller) Cancel() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s != nil {
		c.logger.Printf("[%s] Cancelling %s run", shortID(s.id), c.Tool())
		s.cancel()
	}
}

// Forget drops the sink entries of a file that no longer exists.
func (c *Controller) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink.Delete(path)
}

// Running reports whether an invocation is in flight.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// begin takes the slot, superseding and awaiting any predecessor.
func (c *Controller) begin(ctx context.Context) (*slot, context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s := &slot{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	prev := c.current
	c.current = s
	if prev != nil {
		prev.superseded = true
		prev.cancel()
	}
	c.mu.Unlock()

	if prev != nil {
		c.logger.Printf("[%s] Cancelling previous %s run [%s]", shortID(s.id), c.Tool(), shortID(prev.id))
		select {
		case <-prev.done:
		case <-runCtx.Done():
		}
	}

	return s, runCtx
}

// end releases the slot if s still holds it.
func (c *Controller) end(s *slot) {
	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	c.mu.Unlock()

	s.cancel()
	close(s.done)
}

// withSlot runs fn under the lock unless s has been superseded, and
// reports whether fn ran.
func (c *Controller) withSlot(s *slot, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.superseded {
		return false
	}
	fn()
	return true
}

func (c *Controller) isSuperseded(s *slot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.superseded
}

// clearTargets drops stale sink entries before a run: per file when every
// target is a Kotlin file, everything otherwise.
func (c *Controller) clearTargets(req linter.Request) {
	if len(req.Targets) == 0 {
		c.sink.Clear()
		return
	}
	for _, t := range req.Targets {
		if !IsKotlinFile(t) {
			c.sink.Clear()
			return
		}
	}
	for _, t := range req.Targets {
		c.sink.Delete(t)
	}
}

// absRequest makes the work directory and targets absolute. An empty work
// directory means the current directory.
func absRequest(req linter.Request) (linter.Request, error) {
	workDir := req.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return req, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return req, fmt.Errorf("failed to resolve %s: %w", req.WorkDir, err)
	}
	req.WorkDir = workDir

	if len(req.Targets) > 0 {
		targets := make([]string, len(req.Targets))
		for i, t := range req.Targets {
			targets[i] = diagnostic.NormalizePath(t, workDir)
		}
		req.Targets = targets
	}

	return req, nil
}

// IsKotlinFile reports whether path names a Kotlin source or script.
func IsKotlinFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".kt" || ext == ".kts"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
