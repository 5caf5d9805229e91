package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vvka-141/reviewbench/internal/db"
	"github.com/vvka-141/reviewbench/internal/files/filesystem"
	"github.com/vvka-141/reviewbench/internal/logging"
	"github.com/vvka-141/reviewbench/internal/metrics"
	"github.com/vvka-141/reviewbench/internal/services"
	"github.com/vvka-141/reviewbench/internal/source"
	"github.com/vvka-141/reviewbench/internal/tui"
	"github.com/vvka-141/reviewbench/internal/ui"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func runBenchmark(cmd *cobra.Command, f *runFlagValues) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildRunConfig(cmd, f, verbose)
	if err != nil {
		return err
	}
	if verbose {
		logConnectionVerbose(os.Stderr, cfg.Connection)
	}

	if f.force && !cfg.CleanTable {
		fmt.Fprintln(os.Stderr, "Warning: --force has no effect without --clean_table")
	}

	interactive := tui.IsInteractive()
	logger := logging.NewConsoleLogger(verbose)
	loader := source.NewLoader(filesystem.NewOSFileSystem(), logger)

	svc := services.NewBenchmarkService(
		db.NewConnector,
		loader,
		selectApprover(f.force, interactive, verbose),
		logger,
	)

	var progress []services.ProgressFunc

	var sink *progressSink
	if showProgress(interactive, verbose, cfg.Strategy) {
		sink = newProgressSink(os.Stderr, os.Stdout, cfg.TableName)
		progress = append(progress, sink.Report)
		svc = svc.WithStdout(sink)
	}

	var recorder *metrics.BenchmarkMetrics
	if f.metricsPath != "" {
		recorder, err = metrics.NewBenchmarkMetrics(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		progress = append(progress, recorder.ObservePage)
	}

	if len(progress) > 0 {
		svc = svc.WithProgress(fanOut(progress...))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := svc.Run(ctx, cfg)
	if sink != nil {
		sink.Stop(err)
	}
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, run cancelled")
		}
		return fmt.Errorf("benchmark failed: %w", err)
	}

	logger.Info("Table %s holds %d rows", cfg.TableName, rep.FinalRowCount)

	if f.reportPath != "" {
		if err := rep.WriteFile(f.reportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Verbose("Report written to %s", f.reportPath)
	}

	if recorder != nil {
		recorder.RecordReport(rep)
		if err := recorder.WriteTextfile(f.metricsPath); err != nil {
			return err
		}
		logger.Verbose("Metrics written to %s", f.metricsPath)
	}
	return nil
}

// fanOut delivers each page report to every fn in order.
func fanOut(fns ...services.ProgressFunc) services.ProgressFunc {
	if len(fns) == 1 {
		return fns[0]
	}
	return func(p reviewbench.PageProgress) {
		for _, fn := range fns {
			fn(p)
		}
	}
}

// showProgress reports whether the page spinner is drawn. Verbose runs log
// every page to stderr, which would be drawn over by the spinner.
func showProgress(interactive, verbose bool, strategy reviewbench.UpdateStrategy) bool {
	return interactive && !verbose && strategy == reviewbench.StrategyBatch
}

// selectApprover picks how --clean_table is confirmed.
// Non-interactive runs cannot prompt and approve at once; --force on a
// terminal still shows a short countdown so Ctrl+C can abort.
func selectApprover(force, interactive, verbose bool) reviewbench.Approver {
	switch {
	case !interactive:
		return ui.NewForcedApprover(verbose, 0)
	case force:
		return ui.NewForcedApprover(verbose, reviewbench.DefaultForceApprovalCountdown)
	default:
		return ui.NewInteractiveApprover(verbose)
	}
}

// progressSink starts the progress display on the first committed page, so
// approval prompts are never drawn over. Any write to stdout stops the
// display first so the timing line is not interleaved with the spinner.
// All methods are called from the goroutine running the benchmark.
type progressSink struct {
	term   io.Writer
	stdout io.Writer
	table  string

	start   sync.Once
	display *tui.ProgressDisplay
}

func newProgressSink(term, stdout io.Writer, table string) *progressSink {
	return &progressSink{term: term, stdout: stdout, table: table}
}

// Report matches services.ProgressFunc.
func (s *progressSink) Report(p reviewbench.PageProgress) {
	s.start.Do(func() {
		s.display = tui.StartProgress(s.term, s.table)
	})
	s.display.Report(p)
}

func (s *progressSink) Write(b []byte) (int, error) {
	s.Stop(nil)
	return s.stdout.Write(b)
}

// Stop ends the display if it was started.
func (s *progressSink) Stop(err error) {
	if s.display != nil {
		s.display.Stop(err)
	}
}
