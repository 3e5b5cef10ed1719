package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// execute runs cmd with args and returns its stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// seedDatabase records one run per request in a fresh database file and
// returns its path. Run IDs are "run-1", "run-2", ... in request order.
func seedDatabase(t *testing.T, reqs ...runner.Request) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ids := make([]string, len(reqs))
	for i := range reqs {
		ids[i] = fmt.Sprintf("run-%d", i+1)
	}
	rn := runner.New(
		runner.WithStore(st),
		runner.WithIDGenerator(runner.NewFixedGenerator(ids...)),
		runner.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	for _, req := range reqs {
		_, _ = rn.Run(context.Background(), req, &trace.Document{})
	}
	return path
}
