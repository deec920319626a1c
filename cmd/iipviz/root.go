package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	noColor bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "iipviz",
		Short: "Chart Vietnamese industrial zone data from natural language questions",
		Long: `iipviz answers questions such as "Vẽ biểu đồ giá thuê đất các KCN ở Bắc Ninh"
with a ranked chart of industrial zones or clusters.

The dataset, completion service and cache are configured through the same
environment variables (or .env file) as the HTTP server.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show pipeline logs on stderr")

	cmd.AddCommand(
		newQueryCmd(opts),
		newProvincesCmd(opts),
		newMCPCmd(),
	)
	return cmd
}
