package runner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/metrics"
)

// SetOptions configures NewSet.
type SetOptions struct {
	Logger  *log.Logger
	Metrics *metrics.Recorder
}

// Set holds one controller per selected tool, each publishing into its own
// diagnostic collection.
type Set struct {
	order       []string
	controllers map[string]*Controller
	collections map[string]*diagnostic.Collection
	settings    map[string]config.ToolSettings
}

// NewSet builds controllers for names (the enabled tools when empty),
// resolving each tool in reg and applying cfg's project settings.
func NewSet(reg *linter.Registry, cfg *config.Config, names []string, opts SetOptions) (*Set, error) {
	if len(names) == 0 {
		names = cfg.EnabledTools()
	}

	s := &Set{
		controllers: make(map[string]*Controller, len(names)),
		collections: make(map[string]*diagnostic.Collection, len(names)),
		settings:    make(map[string]config.ToolSettings, len(names)),
	}

	projectSettings := cfg.Settings()
	for _, name := range names {
		if _, dup := s.controllers[name]; dup {
			continue
		}

		l, err := reg.GetLinter(name)
		if err != nil {
			return nil, err
		}
		if c, ok := l.(linter.Configurable); ok {
			c.Configure(projectSettings)
		}

		var formatter linter.Formatter
		if f, err := reg.GetFormatter(name); err == nil {
			formatter = f
		}

		coll := diagnostic.NewCollection(name)
		s.order = append(s.order, name)
		s.collections[name] = coll
		s.settings[name] = cfg.Tool(name)
		s.controllers[name] = New(l, coll, Options{
			Formatter: formatter,
			Logger:    opts.Logger,
			Metrics:   opts.Metrics,
		})
	}

	return s, nil
}

// Tools returns the tool names in selection order.
func (s *Set) Tools() []string {
	return append([]string(nil), s.order...)
}

// Controller returns the controller of a tool.
func (s *Set) Controller(name string) (*Controller, bool) {
	c, ok := s.controllers[name]
	return c, ok
}

// Collection returns the diagnostics published for a tool.
func (s *Set) Collection(name string) *diagnostic.Collection {
	return s.collections[name]
}

// Settings returns the resolved settings of a tool.
func (s *Set) Settings(name string) config.ToolSettings {
	return s.settings[name]
}

// Request builds the invocation of a tool on targets.
func (s *Set) Request(name, workDir string, targets []string) linter.Request {
	settings := s.settings[name]
	return linter.Request{
		WorkDir:        workDir,
		Targets:        targets,
		Args:           settings.Args,
		ExecutablePath: settings.ExecutablePath,
	}
}

// Lint runs every tool of the set concurrently on the same targets.
func (s *Set) Lint(ctx context.Context, workDir string, targets []string) (diagnostic.ByFile, map[string]error) {
	return s.LintTools(ctx, s.order, workDir, targets)
}

// LintTools runs the named tools concurrently on the same targets. The
// merged diagnostics follow the order of names; a failing tool does not
// stop the others and is reported in the error map. Repeated names run once.
func (s *Set) LintTools(ctx context.Context, names []string, workDir string, targets []string) (diagnostic.ByFile, map[string]error) {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	names = unique

	results := make([]*Result, len(names))
	errs := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		c, ok := s.controllers[name]
		if !ok {
			mu.Lock()
			errs[name] = fmt.Errorf("tool %s is not selected", name)
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			res, err := c.Run(gctx, s.Request(name, workDir, targets))
			if err != nil {
				mu.Lock()
				errs[name] = err
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	merged := make(diagnostic.ByFile)
	for _, res := range results {
		if res != nil {
			merged.Merge(res.Diagnostics)
		}
	}
	return merged, errs
}

// Format runs one tool's formatter on targets.
func (s *Set) Format(ctx context.Context, name, workDir string, targets []string) (*linter.ToolOutput, error) {
	c, ok := s.controllers[name]
	if !ok {
		return nil, fmt.Errorf("tool %s is not selected", name)
	}
	return c.Format(ctx, s.Request(name, workDir, targets))
}

// Cancel stops every in-flight run.
func (s *Set) Cancel() {
	for _, name := range s.order {
		s.controllers[name].Cancel()
	}
}
