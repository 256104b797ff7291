package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sorokid/internal/config"
	"sorokid/internal/logging"
	"sorokid/internal/regression"
	"sorokid/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batteryWorkers int
	batteryWatch   bool
)

// batteryCmd runs a regression battery
var batteryCmd = &cobra.Command{
	Use:   "battery [file]",
	Short: "Compile and verify every problem in a YAML battery",
	Long: `Runs a battery of problems through the step compiler and replays each
sequence. Exits non-zero when any problem fails.

Battery format:
  version: 1
  problems:
    - id: chain-carry
      problem: "95 + 7"
    - id: big-product
      problem: "1234 x 5"
      expect: fallback
      fallback: advanced

With --watch the battery re-runs whenever the file changes, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBattery,
}

func batteryPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Battery.Path != "" {
		return cfg.Battery.Path, nil
	}
	root, err := config.FindWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return regression.DefaultBatteryPath(root), nil
}

func runBattery(cmd *cobra.Command, args []string) error {
	path, err := batteryPath(args)
	if err != nil {
		return err
	}

	workers := batteryWorkers
	if workers == 0 {
		workers = cfg.Battery.Workers
	}
	opts := regression.Options{
		Workers:  workers,
		Compiler: cfg.Compiler(),
		Logger:   logs.Get(logging.CategoryBattery),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !batteryWatch {
		report, err := runBatteryOnce(ctx, cmd, path, opts)
		if err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("battery %s: %d of %d problems failed", path, report.Summary.Failed, report.Summary.Total)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchBattery(ctx, cmd, path, opts)
}

// runBatteryOnce loads, runs and prints one battery pass.
func runBatteryOnce(ctx context.Context, cmd *cobra.Command, path string, opts regression.Options) (*regression.Report, error) {
	b, err := regression.LoadBattery(path)
	if err != nil {
		return nil, err
	}
	report, err := regression.RunBattery(ctx, b, opts)
	if err != nil {
		return report, err
	}

	if jsonOutput {
		return report, writeJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderReport(path, report))
	return report, nil
}

// watchBattery runs the battery now and again after every change until ctx
// is done. Load and run errors are reported without stopping the watch.
func watchBattery(ctx context.Context, cmd *cobra.Command, path string, opts regression.Options) error {
	rerun := func(ctx context.Context) {
		if _, err := runBatteryOnce(ctx, cmd, path, opts); err != nil && ctx.Err() == nil {
			logger.Warn("Battery run failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintln(cmd.ErrOrStderr(), failStyle.Render(err.Error()))
		}
	}

	fw, err := watch.New(path, rerun,
		watch.WithDebounce(cfg.GetDebounce()),
		watch.WithLogger(logs.Get(logging.CategoryWatch)))
	if err != nil {
		return err
	}
	defer fw.Stop()

	rerun(ctx)
	if err := fw.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("watching %s (ctrl-c to stop)", path)))
	fw.Wait()
	return nil
}
