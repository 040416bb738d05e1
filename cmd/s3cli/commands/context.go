package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/output"
	"github.com/marmos91/s3cli/internal/config"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/logger"
	"github.com/marmos91/s3cli/internal/s3client"
	"github.com/marmos91/s3cli/internal/telemetry"
)

// Global persistent flags, bound in root.go's init().
var (
	flagDebug    bool
	flagEndpoint string
	flagRegion   string
	flagTimeout  time.Duration
	flagProfile  string
	flagOutput   string
)

// exitCode is set by the most recently dispatched verb and read by main
// after rootCmd.Execute returns, since cobra's own error return collapses
// every failure to a single code.
var exitCode int

// ExitCode returns the process exit code the last dispatched verb resolved.
func ExitCode() int {
	return exitCode
}

// invocation carries everything a verb's body needs once Parsed →
// ConfigResolved → Executing have run.
type invocation struct {
	ctx     context.Context
	cfg     *config.ResolvedConfig
	client  *s3.Client
	printer *output.Printer
}

// batchResult is satisfied by both concurrency.BatchOutcome (cp/sync) and
// deleteengine.DeleteOutcome (rm), letting dispatch fold either one's
// item-level failures into exit 1 without caring which engine produced it.
type batchResult interface {
	HasFailures() bool
}

// verbBody implements one verb's business logic. It returns the outcome of
// any fanned-out work (nil for verbs with no per-item aggregation, e.g.
// mb/presign/head-object) plus an error that represents a whole-invocation
// failure.
type verbBody func(inv *invocation) (batchResult, error)

// dispatch wraps body in the C10 state machine: Parsed (cobra has already
// parsed flags by the time RunE runs) → ConfigResolved → Executing →
// Completed/FailedWithPartial → Flushing → Exited. Exited is main's
// os.Exit(ExitCode()) after rootCmd.Execute returns.
func dispatch(verb string, body verbBody) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if flagDebug {
			logger.SetLevel("DEBUG")
		}

		format, err := output.ParseFormat(flagOutput)
		if err != nil {
			exitCode = s3clierrors.ExitConfigError
			return err
		}

		cfg, err := config.Load(config.Overrides{
			Endpoint: flagEndpoint,
			Region:   flagRegion,
			Timeout:  flagTimeout,
			Profile:  flagProfile,
		})
		if err != nil {
			exitCode = resolveExitCode(err, nil)
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				logger.Warn("shutdown signal received, cancelling in-flight operations", logger.Operation(verb))
				cancel()
			case <-ctx.Done():
			}
		}()

		shutdown, err := telemetry.Init(ctx, cfg.TelemetryConfig())
		if err != nil {
			exitCode = s3clierrors.ExitConfigError
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		metrics := telemetry.InitMetrics()

		client, err := s3client.New(ctx, cfg)
		if err != nil {
			exitCode = s3clierrors.ExitConfigError
			flushTelemetry(ctx, shutdown, metrics)
			return err
		}

		spanCtx, span := telemetry.StartSpan(ctx, verb)
		inv := &invocation{
			ctx:     spanCtx,
			cfg:     cfg,
			client:  client,
			printer: output.NewPrinter(cmd.OutOrStdout(), format, true),
		}

		outcome, runErr := body(inv)

		status := "success"
		switch {
		case runErr != nil:
			status = "error"
			telemetry.RecordError(spanCtx, runErr)
			if kind, ok := errKind(runErr); ok {
				metrics.ObserveError(string(kind))
			}
		case outcome != nil && outcome.HasFailures():
			status = "partial"
			metrics.ObserveError(string(s3clierrors.KindPartialFailure))
		}
		metrics.ObserveOperation(verb, status, time.Since(start))
		span.End()

		exitCode = resolveExitCode(runErr, outcome)
		flushTelemetry(ctx, shutdown, metrics)

		return runErr
	}
}

// flushTelemetry drains the trace pipeline and, under --debug, dumps the
// gathered metrics to stderr — a sub-second CLI invocation has no scrape
// window, so this is the only chance those instruments are ever observed.
func flushTelemetry(ctx context.Context, shutdown func(context.Context) error, metrics *telemetry.Metrics) {
	if err := shutdown(ctx); err != nil {
		logger.Error("telemetry shutdown error", logger.Err(err))
	}
	time.Sleep(150 * time.Millisecond)

	if flagDebug {
		if dump, err := metrics.Flush(); err == nil {
			fmt.Fprint(os.Stderr, dump)
		}
	}
}

// resolveExitCode maps a verb's terminal error and batch outcome onto one
// of the four process exit codes, folding everything else into item-level
// failure (exit 1).
func resolveExitCode(err error, outcome batchResult) int {
	if err != nil {
		if kind, ok := errKind(err); ok {
			return s3clierrors.ExitCodeForKind(kind)
		}
		return s3clierrors.ExitItemFailure
	}
	if outcome != nil && outcome.HasFailures() {
		return s3clierrors.ExitItemFailure
	}
	return s3clierrors.ExitSuccess
}

func errKind(err error) (s3clierrors.Kind, bool) {
	var e *s3clierrors.Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
