package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/internal/compare"
	"github.com/xkilldash9x/fospace/internal/observability"
)

// ErrReportsDiffer is returned when two reports are not equivalent.
var ErrReportsDiffer = errors.New("reports differ")

// newDiffCmd creates the `diff` command, which checks two JSON reports for
// regressions in the resolved output.
func newDiffCmd() *cobra.Command {
	var opts compare.Options

	diffCmd := &cobra.Command{
		Use:   "diff <report-a> <report-b>",
		Short: "Compares two JSON reports, ignoring run metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			svc := compare.NewService(logger)

			res, err := svc.CompareFiles(args[0], args[1], opts)
			if err != nil {
				return err
			}
			if res.AreEquivalent {
				fmt.Fprintln(cmd.OutOrStdout(), "reports are equivalent")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Diff)
			logger.Info("Reports differ",
				zap.Strings("changed", res.Changed),
				zap.Strings("missing", res.Missing))
			return ErrReportsDiffer
		},
	}

	diffCmd.Flags().BoolVar(&opts.IgnorePositions, "ignore-positions", false, "Ignore the position labels of resolved atoms.")
	diffCmd.Flags().BoolVar(&opts.IgnoreGroups, "ignore-groups", false, "Ignore resolver group counts.")
	return diffCmd
}
