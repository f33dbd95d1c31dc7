// Package follow streams sections out of a growing JSON-lines file.
package follow

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync/atomic"

	"github.com/hpcloud/tail"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/document"
)

// Config controls how a file is followed.
type Config struct {
	Path string
	// Follow keeps waiting for new lines at EOF and reopens rotated files.
	Follow bool
	// FromEnd skips the content already in the file.
	FromEnd bool
	// Rate caps the sections per second handed on. Zero means unlimited.
	Rate float64
}

// Follower tails a file of one JSON section per line.
type Follower struct {
	cfg     Config
	logger  *zap.Logger
	limiter *rate.Limiter
	skipped atomic.Int64
}

func New(cfg Config, logger *zap.Logger) *Follower {
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	burst := 1
	if cfg.Rate > 1 {
		burst = int(math.Ceil(cfg.Rate))
	}
	return &Follower{
		cfg:     cfg,
		logger:  logger.Named("follow"),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Skipped is the number of lines that did not decode as a section.
func (f *Follower) Skipped() int64 { return f.skipped.Load() }

// Run sends every decoded section to out until the file ends (when not
// following) or ctx is cancelled. out is closed when Run returns. Blank and
// malformed lines are skipped.
func (f *Follower) Run(ctx context.Context, out chan<- schemas.Section) error {
	defer close(out)

	tcfg := tail.Config{
		Follow:    f.cfg.Follow,
		ReOpen:    f.cfg.Follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	}
	if f.cfg.FromEnd {
		tcfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
	t, err := tail.TailFile(f.cfg.Path, tcfg)
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", f.cfg.Path, err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	f.logger.Info("Following section stream", zap.String("path", f.cfg.Path), zap.Bool("follow", f.cfg.Follow))
	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Stopping section stream.")
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				f.logger.Debug("Section stream closed.")
				return nil
			}
			lineNo++
			if line.Err != nil {
				f.logger.Warn("Error reading from section stream", zap.Error(line.Err))
				continue
			}
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}
			section, err := document.DecodeSection([]byte(text))
			if err != nil {
				f.skipped.Add(1)
				f.logger.Warn("Skipping malformed section line", zap.Int("line", lineNo), zap.Error(err))
				continue
			}
			if err := f.limiter.Wait(ctx); err != nil {
				return nil
			}
			select {
			case out <- section:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
