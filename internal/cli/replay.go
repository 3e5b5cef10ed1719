package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	RunID     string // optional - specific run only
	Algorithm string // optional - runs of one algorithm only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Algorithm     string `json:"algorithm"`
	Steps         int    `json:"steps"`
	ReplayedSteps int    `json:"replayed_steps"`
	Skipped       bool   `json:"skipped,omitempty"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded runs and verify determinism",
		Long: `Re-run recorded runs and verify their documents are reproduced exactly.

Each run is executed again with its recorded algorithm, input and overflow
policy, and the new document is compared byte for byte with the stored one.
Runs still marked running (the process died mid-run) are skipped.

Exit codes:
  0 - All replayed runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  algotrace replay --db ./runs.db
  algotrace replay --db ./runs.db --run 0190a1b2-...
  algotrace replay --db ./runs.db --algorithm merge_sort --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "", "replay runs of this algorithm only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, opts.Algorithm, 0)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	if len(runs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(formatter, result)
		}
		fmt.Fprintln(formatter.Writer, "No runs found in database.")
		return nil
	}

	// Replays are not recorded, so the source database is left unchanged.
	rn := runner.New(runner.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	for _, run := range runs {
		runResult, err := replayAndVerifyRun(ctx, st, rn, run)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		formatter.VerboseLog("Replayed %s: %d/%d steps", run.ID, runResult.ReplayedSteps, runResult.Steps)

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayAndVerifyRun re-executes run and compares the new document with the
// stored one. Failed runs are replayed with their recorded step count as the
// quota so a run cut short by --max-steps stops at the same record.
func replayAndVerifyRun(ctx context.Context, st *store.Store, rn *runner.Runner, run store.Run) (ReplayRunResult, error) {
	res := ReplayRunResult{
		RunID:     run.ID,
		Algorithm: run.Algorithm,
		Steps:     run.StepCount,
	}
	if run.Status == store.StatusRunning {
		res.Skipped = true
		res.Deterministic = true
		return res, nil
	}

	stored, err := st.ReadDocument(ctx, run.ID)
	if err != nil {
		return res, err
	}
	want, err := stored.MarshalJSON()
	if err != nil {
		return res, err
	}

	policy, err := trace.ParsePolicy(run.Policy)
	if err != nil {
		return res, err
	}
	req := runner.Request{
		Algorithm: run.Algorithm,
		Input:     run.Input,
		Policy:    policy,
	}
	if run.Status == store.StatusFailed && run.StepCount > 0 {
		req.MaxSteps = run.StepCount
	}

	replayed := &trace.Document{}
	_, runErr := rn.Run(ctx, req, replayed)
	if errors.Is(runErr, runner.ErrUnknownAlgorithm) {
		return res, runErr
	}
	got, err := replayed.MarshalJSON()
	if err != nil {
		return res, err
	}

	res.ReplayedSteps = replayed.Len()
	res.Deterministic = bytes.Equal(want, got)
	return res, nil
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeNonDeterministic,
			Message: "replayed runs differ from recorded documents",
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replaying %d run(s)...\n\n", result.TotalRuns)
	for _, run := range result.Runs {
		switch {
		case run.Skipped:
			fmt.Fprintf(w, "- %s (%s): skipped, run never finished\n", run.RunID, run.Algorithm)
		case run.Deterministic:
			fmt.Fprintf(w, "✓ %s (%s): %d steps\n", run.RunID, run.Algorithm, run.Steps)
		default:
			fmt.Fprintf(w, "✗ %s (%s): recorded %d steps, replayed %d, documents differ\n",
				run.RunID, run.Algorithm, run.Steps, run.ReplayedSteps)
		}
	}
	fmt.Fprintln(w)

	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Determinism verification FAILED")
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}
