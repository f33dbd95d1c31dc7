package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/config"
	"github.com/xkilldash9x/fospace/internal/document"
	"github.com/xkilldash9x/fospace/internal/engine"
	"github.com/xkilldash9x/fospace/internal/observability"
	"github.com/xkilldash9x/fospace/internal/reporting"
	"github.com/xkilldash9x/fospace/internal/store"
)

// newResolveCmd creates and configures the `resolve` command.
func newResolveCmd() *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve <file>...",
		Short: "Resolves the sections of one or more documents and reports the result",
		Long: `Loads each document (JSON or XML, optionally .gz or .br compressed), resolves
every section, replays the chosen breaks (the forced ones when a section names
none) and writes a report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			var sections []schemas.Section
			for _, path := range args {
				doc, err := document.LoadFile(path)
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", path, err)
				}
				sections = append(sections, doc.Sections...)
			}

			runID := uuid.NewString()
			logger.Info("Starting resolution run",
				zap.String("run_id", runID),
				zap.Strings("files", args),
				zap.Int("sections", len(sections)))

			st, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			eng, err := engine.New(cfg, logger, st, engine.NewSectionWorker(cfg, logger))
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}
			results, err := eng.Run(ctx, runID, sections)
			if err != nil {
				return fmt.Errorf("resolution run %s failed: %w", runID, err)
			}

			rep, err := newReporter(cmd.OutOrStdout(), cfg.Output(), runID)
			if err != nil {
				return err
			}
			for i := range results {
				if err := rep.Write(&results[i]); err != nil {
					_ = rep.Close()
					return err
				}
			}
			if err := rep.Close(); err != nil {
				return fmt.Errorf("failed to finalize report: %w", err)
			}

			logger.Info("Resolution run completed", zap.String("run_id", runID))
			return nil
		},
	}

	resolveCmd.Flags().StringP("format", "f", "json", "Report format: 'json' or 'text'. (Overrides config/env)")
	resolveCmd.Flags().StringP("output", "o", "", "Report file path. Defaults to stdout. (Overrides config/env)")
	resolveCmd.Flags().IntP("concurrency", "j", 0, "Number of sections resolved in parallel. (Overrides config/env)")
	resolveCmd.Flags().Bool("keep-together", false, "Forbid every non-forced break. (Overrides config/env)")
	return resolveCmd
}

// openStore connects the result store when persistence is enabled. The
// returned store is nil otherwise.
func openStore(ctx context.Context, cfg config.Interface, logger *zap.Logger) (engine.Store, func(), error) {
	dbCfg := cfg.Database()
	if !dbCfg.Enabled {
		return nil, func() {}, nil
	}
	s, err := store.Connect(ctx, dbCfg.URL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, s.Close, nil
}

// newReporter writes to the configured file, or to out when no path is set.
func newReporter(out io.Writer, outCfg config.OutputConfig, runID string) (reporting.Reporter, error) {
	if outCfg.Path == "" || outCfg.Path == "stdout" {
		return reporting.NewForWriter(outCfg.Format, out, runID)
	}
	return reporting.New(outCfg.Format, outCfg.Path, runID)
}
