package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/algo"
)

// AlgorithmEntry is the JSON view of a catalog algorithm.
type AlgorithmEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Defaults    []int  `json:"defaults"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List catalog algorithms",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	all := algo.All()
	entries := make([]AlgorithmEntry, len(all))
	for i, a := range all {
		defaults := a.Defaults
		if defaults == nil {
			defaults = []int{}
		}
		entries[i] = AlgorithmEntry{Name: a.Name, Description: a.Description, Defaults: defaults}
	}

	if opts.Format == "json" {
		return formatter.Encode(CLIResponse{Status: "ok", Data: entries})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Description)
	}
	return tw.Flush()
}
