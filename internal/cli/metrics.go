package cli

import (
	"fmt"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/metrics"
)

// NewMetricsCommand creates the `metrics` command: a point-in-time dump
// of the process's prometheus metrics in text exposition format, for
// operators who don't want to stand up an HTTP scrape endpoint just to
// check counters.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "metrics",
		Short:         "Print current metrics in Prometheus text format",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(rootOpts, cmd)
		},
	}
}

func runMetrics(opts *RootOptions, cmd *cobra.Command) error {
	reg := metrics.NewRegistry()

	families, err := reg.Gatherer().Gather()
	if err != nil {
		return WrapExitError(ExitCommandError, "gathering metrics", err)
	}

	enc := expfmt.NewEncoder(cmd.OutOrStdout(), expfmt.FmtText)
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return WrapExitError(ExitCommandError, "encoding metrics", err)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "(metrics reflect this process only; wire internal/metrics into long-running daemons for real totals)")
	return nil
}
