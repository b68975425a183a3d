package watch

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/runner"
)

// Target binds a tool controller to its on-save settings.
type Target struct {
	Controller *runner.Controller
	Settings   config.ToolSettings
}

// TargetsFrom binds every tool of set to its settings.
func TargetsFrom(set *runner.Set) []Target {
	targets := make([]Target, 0, len(set.Tools()))
	for _, name := range set.Tools() {
		c, _ := set.Controller(name)
		targets = append(targets, Target{Controller: c, Settings: set.Settings(name)})
	}
	return targets
}

// ResultFunc is called after every on-save run that was not superseded.
// res is nil for format runs and failed runs.
type ResultFunc func(tool string, res *runner.Result, err error)

// Dispatcher turns batches of saved files into tool runs: format when
// formatOnSave is set and the tool can format, otherwise lint when
// runOnSave is set. Each batch becomes one invocation per tool, which
// supersedes that tool's in-flight run.
type Dispatcher struct {
	ctx      context.Context
	workDir  string
	targets  []Target
	logger   *log.Logger
	onResult ResultFunc

	// Files written by our own formatting are ignored for this long.
	suppressFor time.Duration

	mu         sync.Mutex
	suppressed map[string]time.Time

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher running tools in workDir. Runs are
// bound to ctx.
func NewDispatcher(ctx context.Context, workDir string, targets []Target, logger *log.Logger, onResult ResultFunc) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dispatcher{
		ctx:         ctx,
		workDir:     workDir,
		targets:     targets,
		logger:      logger,
		onResult:    onResult,
		suppressFor: 2 * time.Second,
		suppressed:  make(map[string]time.Time),
	}
}

// Handle is a Handler for Watcher.
func (d *Dispatcher) Handle(changes []Change) {
	var saved []string
	for _, c := range changes {
		switch c.Op {
		case OpRemove, OpRename:
			for _, t := range d.targets {
				t.Controller.Forget(c.Path)
			}
		default:
			if !d.isSuppressed(c.Path) {
				saved = append(saved, c.Path)
			}
		}
	}
	if len(saved) == 0 {
		return
	}

	for _, t := range d.targets {
		if !t.Settings.Enable {
			continue
		}
		req := linter.Request{
			WorkDir:        d.workDir,
			Targets:        saved,
			Args:           t.Settings.Args,
			ExecutablePath: t.Settings.ExecutablePath,
		}

		switch {
		case t.Settings.FormatOnSave && t.Controller.CanFormat():
			d.wg.Add(1)
			go d.format(t, req)
		case t.Settings.RunOnSave:
			d.wg.Add(1)
			go d.lint(t, req)
		}
	}
}

// Wait blocks until all dispatched runs have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Cancel stops the in-flight run of every tool.
func (d *Dispatcher) Cancel() {
	for _, t := range d.targets {
		t.Controller.Cancel()
	}
}

func (d *Dispatcher) lint(t Target, req linter.Request) {
	defer d.wg.Done()

	res, err := t.Controller.Run(d.ctx, req)
	d.report(t.Controller.Tool(), res, err)
}

func (d *Dispatcher) format(t Target, req linter.Request) {
	defer d.wg.Done()

	_, err := t.Controller.Format(d.ctx, req)
	if err == nil {
		d.suppress(req.Targets)
	}
	d.report(t.Controller.Tool(), nil, err)
}

func (d *Dispatcher) report(tool string, res *runner.Result, err error) {
	if errors.Is(err, runner.ErrSuperseded) {
		return
	}
	if err != nil && d.ctx.Err() == nil {
		d.logger.Printf("warning: %s: %v", tool, err)
	}
	if d.onResult != nil {
		d.onResult(tool, res, err)
	}
}

func (d *Dispatcher) suppress(paths []string) {
	until := time.Now().Add(d.suppressFor)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range paths {
		d.suppressed[p] = until
	}
}

func (d *Dispatcher) isSuppressed(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.suppressed[path]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(d.suppressed, path)
		return false
	}
	return true
}
