package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database  string
	RunID     string
	Algorithm string
	Latest    bool
	Limit     int
	Raw       bool
}

// RunInfo is the JSON view of a recorded run.
type RunInfo struct {
	RunID     string `json:"run_id"`
	Seq       int64  `json:"seq"`
	Algorithm string `json:"algorithm"`
	Input     []int  `json:"input"`
	Policy    string `json:"policy"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	Error     string `json:"error,omitempty"`
}

// RunDetail is a run plus its step messages.
type RunDetail struct {
	RunInfo
	Messages []string `json:"messages"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recorded runs",
		Long: `Show runs recorded in a database.

With --run (or --latest) one run is shown with its step messages; --raw
writes that run's trace document instead. Without them the recorded runs
are listed in the order they started.

Examples:
  algotrace show --db ./runs.db
  algotrace show --db ./runs.db --algorithm quick_sort --limit 5
  algotrace show --db ./runs.db --run 0190a1b2-... --raw > trace.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a specific run")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "show the most recent run")
	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "", "list runs of this algorithm only")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "list at most this many runs (0 = all)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "write the run's trace document")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
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

	if opts.RunID == "" && !opts.Latest {
		if opts.Raw {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--raw requires --run or --latest", nil)
		}
		return showRunList(ctx, st, opts, formatter)
	}

	var run store.Run
	if opts.RunID != "" {
		run, err = st.ReadRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "run not found", err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}

	doc, err := st.ReadDocument(ctx, run.ID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read document", err)
	}

	if opts.Raw {
		_, err := doc.WriteTo(formatter.Writer)
		return err
	}
	return showRunDetail(run, doc, formatter)
}

func showRunList(ctx context.Context, st *store.Store, opts *ShowOptions, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx, opts.Algorithm, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}

	infos := make([]RunInfo, len(runs))
	for i, run := range runs {
		infos[i] = newRunInfo(run)
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: infos})
	}

	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found in database.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tALGORITHM\tSTATUS\tSTEPS")
	for _, info := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", info.Seq, info.RunID, info.Algorithm, info.Status, info.Steps)
	}
	return tw.Flush()
}

func showRunDetail(run store.Run, doc *trace.Document, formatter *OutputFormatter) error {
	detail := RunDetail{
		RunInfo:  newRunInfo(run),
		Messages: make([]string, 0, doc.Len()),
	}
	for _, rec := range doc.Records() {
		detail.Messages = append(detail.Messages, rec.Message)
	}

	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", RunID: run.ID, Data: detail})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run:       %s\n", detail.RunID)
	fmt.Fprintf(w, "Algorithm: %s\n", detail.Algorithm)
	fmt.Fprintf(w, "Input:     %v\n", detail.Input)
	fmt.Fprintf(w, "Policy:    %s\n", detail.Policy)
	fmt.Fprintf(w, "Status:    %s\n", detail.Status)
	if detail.Error != "" {
		fmt.Fprintf(w, "Error:     %s\n", detail.Error)
	}
	fmt.Fprintf(w, "Steps:     %d\n\n", detail.Steps)
	for i, msg := range detail.Messages {
		fmt.Fprintf(w, "%4d  %s\n", i, msg)
	}
	return nil
}

func newRunInfo(run store.Run) RunInfo {
	input := run.Input
	if input == nil {
		input = []int{}
	}
	return RunInfo{
		RunID:     run.ID,
		Seq:       run.Seq,
		Algorithm: run.Algorithm,
		Input:     input,
		Policy:    run.Policy,
		Status:    run.Status,
		Steps:     run.StepCount,
		Error:     run.Error,
	}
}
