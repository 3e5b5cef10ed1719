package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/algo"
	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Output   string
	Strict   bool
	MaxSteps int

	// IDGenerator allows overriding the run ID source (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator runner.IDGenerator

	// CreateOutput opens the --output file. If nil, os.Create is used.
	CreateOutput func(name string) (io.WriteCloser, error)
}

// RunSummary is the --format json summary written to stderr after a run.
type RunSummary struct {
	RunID     string      `json:"run_id"`
	Algorithm string      `json:"algorithm"`
	Input     []int       `json:"input"`
	Stats     trace.Stats `json:"stats"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <algorithm> [inputs...]",
		Short: "Run an algorithm and stream its trace document",
		Long: `Run a catalog algorithm and write its trace document.

The document is streamed to stdout (or --output) one record per step, so a
crash leaves every completed step on disk. Inputs are integers, given as
separate arguments or comma-separated; without inputs the algorithm's
defaults are used. Diagnostics go to stderr.

Exit codes:
  0 - Run completed
  1 - Run failed (the document is still closed and valid)
  2 - Command error (unknown algorithm, bad inputs, database errors)

Examples:
  algotrace run bubble_sort 5 3 8 1
  algotrace run binary_search 23,2,5,8,12,16,23,38
  algotrace run merge_sort --db ./runs.db --strict
  algotrace run factorial 12 --max-steps 20 -o trace.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlgorithm(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail the run on the first capacity overflow")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "stop after this many steps (0 = unlimited)")

	return cmd
}

func runAlgorithm(opts *RunOptions, name string, rawInputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	// stdout carries the document, so every envelope goes to stderr.
	formatter.Writer = cmd.ErrOrStderr()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if _, ok := algo.Lookup(name); !ok {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("unknown algorithm %q (see algotrace list)", name), nil)
	}
	if opts.MaxSteps < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, "--max-steps must be non-negative", nil)
	}
	input, err := runner.ParseInputs(rawInputs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, "invalid inputs", err)
	}

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.IDGenerator != nil {
		runnerOpts = append(runnerOpts, runner.WithIDGenerator(opts.IDGenerator))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		runnerOpts = append(runnerOpts, runner.WithStore(st))
	}

	var out io.Writer = cmd.OutOrStdout()
	var outFile io.WriteCloser
	if opts.Output != "" {
		create := opts.CreateOutput
		if create == nil {
			create = func(name string) (io.WriteCloser, error) { return os.Create(name) }
		}
		f, err := create(opts.Output)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to create output file", err)
		}
		outFile, out = f, f
	}

	policy := trace.PolicyDrop
	if opts.Strict {
		policy = trace.PolicyStrict
	}

	res, runErr := runner.New(runnerOpts...).Run(cmd.Context(), runner.Request{
		Algorithm: name,
		Input:     input,
		Policy:    policy,
		MaxSteps:  opts.MaxSteps,
	}, trace.NewStreamSink(out))

	// A failed close can lose buffered document bytes.
	var closeErr error
	if outFile != nil {
		if err := outFile.Close(); err != nil {
			closeErr = fmt.Errorf("close %s: %w", opts.Output, err)
		}
	}

	if res != nil {
		logger.Debug("run summary",
			"run_id", res.RunID,
			"steps", res.Stats.Steps,
			"dropped", res.Stats.Dropped(),
		)
	}
	if runErr != nil {
		code := ErrCodeRunFailed
		if errors.Is(runErr, algo.ErrInput) {
			code = ErrCodeInvalidInput
		}
		return formatter.Fail(ExitFailure, code, "run failed", errors.Join(runErr, closeErr))
	}
	if closeErr != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to write output file", closeErr)
	}

	if opts.Format == "json" {
		return formatter.Encode(CLIResponse{
			Status: "ok",
			RunID:  res.RunID,
			Data: RunSummary{
				RunID:     res.RunID,
				Algorithm: res.Algorithm,
				Input:     res.Input,
				Stats:     res.Stats,
			},
		})
	}
	return nil
}
