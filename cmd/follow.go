package cmd

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/engine"
	"github.com/xkilldash9x/fospace/internal/follow"
	"github.com/xkilldash9x/fospace/internal/observability"
	"github.com/xkilldash9x/fospace/internal/reporting"
)

// newFollowCmd creates and configures the `follow` command.
func newFollowCmd() *cobra.Command {
	var once, fromEnd bool

	followCmd := &cobra.Command{
		Use:   "follow <file>",
		Short: "Resolves sections from a JSON-lines file as they are appended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()
			runID := uuid.NewString()

			outCfg := cfg.Output()
			if outCfg.Format == reporting.FormatJSON {
				// A stream has no end to wrap a single report around.
				outCfg.Format = reporting.FormatJSONLines
			}
			rep, err := newReporter(cmd.OutOrStdout(), outCfg, runID)
			if err != nil {
				return err
			}

			st, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				_ = rep.Close()
				return err
			}
			defer closeStore()

			eng, err := engine.New(cfg, logger, st, engine.NewSectionWorker(cfg, logger))
			if err != nil {
				_ = rep.Close()
				return fmt.Errorf("failed to create engine: %w", err)
			}

			var mu sync.Mutex
			failed := 0
			sink := func(res *schemas.SectionResult, err error) {
				if err == nil {
					err = rep.Write(res)
				}
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}

			follower := follow.New(follow.Config{
				Path:    args[0],
				Follow:  !once,
				FromEnd: fromEnd,
				Rate:    cfg.Engine().FollowRate,
			}, logger)

			sections := make(chan schemas.Section)
			eng.Start(ctx, runID, sections, sink)
			// Run closes sections when the stream ends, which drains the workers.
			runErr := follower.Run(ctx, sections)
			eng.Stop()

			if err := rep.Close(); err != nil && runErr == nil {
				runErr = fmt.Errorf("failed to finalize report: %w", err)
			}
			if runErr != nil {
				return runErr
			}

			logger.Info("Section stream finished",
				zap.String("run_id", runID),
				zap.Int("failed", failed),
				zap.Int64("skipped_lines", follower.Skipped()))
			if failed > 0 {
				return fmt.Errorf("%d sections failed to resolve", failed)
			}
			return nil
		},
	}

	followCmd.Flags().StringP("format", "f", "json", "Report format: 'json' (one result per line) or 'text'. (Overrides config/env)")
	followCmd.Flags().StringP("output", "o", "", "Report file path. Defaults to stdout. (Overrides config/env)")
	followCmd.Flags().IntP("concurrency", "j", 0, "Number of sections resolved in parallel. (Overrides config/env)")
	followCmd.Flags().Bool("keep-together", false, "Forbid every non-forced break. (Overrides config/env)")
	followCmd.Flags().Float64("rate", 0, "Maximum sections per second, 0 for unlimited. (Overrides config/env)")
	followCmd.Flags().BoolVar(&once, "once", false, "Read the file to its end and exit instead of waiting for more lines.")
	followCmd.Flags().BoolVar(&fromEnd, "from-end", false, "Skip the sections already in the file.")
	return followCmd
}
