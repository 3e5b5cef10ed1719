package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/server"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Timeout  time.Duration
	MaxSteps int
	Strict   bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve algorithm runs over HTTP",
		Long: `Serve catalog runs over HTTP.

Routes:
  GET  /health               liveness and catalog size
  GET  /algorithms           catalog listing
  POST /run/:algorithm       body {"inputs": [...]}; responds with the document
  GET  /run/:algorithm       run with the catalog defaults
  GET  /runs/:id             a recorded run's document (requires --db)
  GET  /metrics              Prometheus metrics

Every run is bounded by --timeout and --max-steps. The server stops
gracefully on SIGINT or SIGTERM.

Examples:
  algotrace serve --addr :8080
  algotrace serve --addr 127.0.0.1:9000 --db ./runs.db --timeout 2s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", server.DefaultTimeout, "per-run time limit")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", server.DefaultMaxSteps, "per-run step limit (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail runs on the first capacity overflow")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	srv, cleanup, err := newServer(opts, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, opts.Addr); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "server failed", err)
	}
	return nil
}

// newServer wires the runner, optional store and server from opts. The
// returned cleanup closes the store.
func newServer(opts *ServeOptions, cmd *cobra.Command) (*server.Server, func(), error) {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	policy := trace.PolicyDrop
	if opts.Strict {
		policy = trace.PolicyStrict
	}
	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithTimeout(opts.Timeout),
		server.WithMaxSteps(opts.MaxSteps),
		server.WithPolicy(policy),
	}

	cleanup := func() {}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, nil, err
		}
		runnerOpts = append(runnerOpts, runner.WithStore(st))
		serverOpts = append(serverOpts, server.WithStore(st))
		cleanup = func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}
	}

	return server.New(runner.New(runnerOpts...), serverOpts...), cleanup, nil
}
