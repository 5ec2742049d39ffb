package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/khanhnv2901/secheaders/internal/headers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url> [url...]",
	Short: "Fetch response headers and score security posture",
	Long: `Fetch the response headers of each URL with a header-only request and
score them against the security header catalog.

Targets without a scheme default to https. Only http and https are accepted.
The exit status is non-zero when any target could not be analyzed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runAnalyze(ctx, appCtx, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// newResolver is swapped in tests.
var newResolver = func(timeout time.Duration, logger *zap.Logger) checker.HeaderResolver {
	return headers.NewDefaultResolver(timeout, headers.WithLogger(logger))
}

func runAnalyze(ctx context.Context, appCtx *AppContext, targets []string, out, errOut io.Writer) error {
	cfg := appCtx.Config.Analyze
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	logger := zap.NewNop()
	if appCtx.Logger != nil {
		logger = appCtx.Logger.Desugar()
	}

	chk := &checker.HeaderChecker{
		Resolver: newResolver(timeout, logger),
		Catalog:  appCtx.Catalog,
		Logger:   logger,
	}
	runner := &checker.Runner{
		Concurrency: cfg.Concurrency,
		RateLimit:   cfg.RateLimit,
		Timeout:     timeout,
	}

	var progress *progressPrinter
	if cfg.ProgressEnabled && len(targets) > 1 {
		progress = newProgressPrinter(len(targets), "headers", errOut)
		progress.Start()
	}

	start := time.Now()
	results := runner.RunChecks(ctx, targets, chk, func(target string, result checker.CheckResult, duration float64) error {
		if progress != nil {
			progress.Increment(result.OK(), duration)
		}
		return nil
	})
	if progress != nil {
		progress.Stop()
	}

	okCount, failed := summarizeStatuses(results)
	logger.Info("analysis run complete",
		zap.Int("targets", len(targets)),
		zap.Int("ok", okCount),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)

	if cfg.JSONOutput {
		if err := writeJSON(out, results); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	} else {
		for _, r := range results {
			renderReport(out, r, cfg.DisplayLimit)
		}
		if len(results) > 1 {
			renderSummary(out, results)
		}
	}

	if failed > 0 {
		return &AnalysisFailedError{Failed: failed, Total: len(results)}
	}
	return nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&cliConfig.Analyze.JSONOutput, "json", false, "print results as JSON")
	analyzeCmd.Flags().IntVar(&cliConfig.Analyze.Concurrency, "concurrency", cliConfig.Analyze.Concurrency, "targets analyzed in parallel")
	analyzeCmd.Flags().IntVar(&cliConfig.Analyze.RateLimit, "rate-limit", cliConfig.Analyze.RateLimit, "global requests per second (0 = unlimited)")
	analyzeCmd.Flags().IntVar(&cliConfig.Analyze.TimeoutSecs, "timeout", cliConfig.Analyze.TimeoutSecs, "per-target timeout in seconds")
	analyzeCmd.Flags().IntVar(&cliConfig.Analyze.DisplayLimit, "display-limit", cliConfig.Analyze.DisplayLimit, "characters of each header value to show")
	analyzeCmd.Flags().BoolVar(&cliConfig.Analyze.ProgressEnabled, "progress", false, "show live progress for multi-target runs")
}
