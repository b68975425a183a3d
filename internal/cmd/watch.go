package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/metrics"
	"github.com/DevSymphony/symkt/internal/report"
	"github.com/DevSymphony/symkt/internal/runner"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/DevSymphony/symkt/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchMetricsAddr string
	watchInitial     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Lint or format Kotlin files when they are saved",
	Long: `Watch the project tree and run the tools on every saved .kt or .kts file.

Per tool, runOnSave lints the saved files and formatOnSave formats them
(ktlint and ktfmt). A new save cancels the tool's run that is still in
progress. Diagnostics of deleted files are dropped.`,
	Example: `  symkt watch
  symkt watch --metrics-addr :9464`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "lint the whole project before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	logger := log.New(os.Stderr, "", log.Ltime)

	set, err := runner.NewSet(linter.Global(), proj.cfg, nil, runner.SetOptions{Logger: logger, Metrics: rec})
	if err != nil {
		return err
	}
	if len(set.Tools()) == 0 {
		return fmt.Errorf("no tools enabled in %s", proj.configPath)
	}

	printer := &resultPrinter{root: proj.root, color: ui.UseColor(os.Stdout)}
	dispatcher := watch.NewDispatcher(ctx, proj.root, watch.TargetsFrom(set), logger, printer.print)

	w, err := watch.New(proj.root, dispatcher.Handle, watch.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchMetricsAddr != "" {
		srv := &http.Server{Addr: watchMetricsAddr, Handler: rec.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				ui.PrintError(fmt.Sprintf("metrics server: %v", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		ui.PrintInfo(fmt.Sprintf("Metrics: http://%s/metrics", watchMetricsAddr))
	}

	if watchInitial {
		diags, errs := set.Lint(ctx, proj.root, nil)
		for tool, err := range errs {
			printer.print(tool, nil, err)
		}
		printer.printAll(diags)
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	ui.PrintTitle("Watch", fmt.Sprintf("%s (Ctrl+C to stop)", proj.root))

	<-ctx.Done()

	w.Stop()
	dispatcher.Cancel()
	dispatcher.Wait()
	fmt.Println()
	ui.PrintDone("Stopped watching")
	return nil
}

// resultPrinter writes on-save results to stdout, one run at a time.
type resultPrinter struct {
	root  string
	color bool
	mu    sync.Mutex
}

func (p *resultPrinter) print(tool string, res *runner.Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			ui.PrintError(fmt.Sprintf("%s: %v", tool, err))
		}
		return
	}
	if res == nil {
		ui.PrintOK(fmt.Sprintf("%s formatted", tool))
		return
	}

	ui.PrintTitle(tool, fmt.Sprintf("run %s", res.RunID))
	_ = report.Write(os.Stdout, report.FormatText, res.Diagnostics, report.Options{BasePath: p.root, Color: p.color})
}

func (p *resultPrinter) printAll(diags diagnostic.ByFile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_ = report.Write(os.Stdout, report.FormatText, diags, report.Options{BasePath: p.root, Color: p.color})
}
