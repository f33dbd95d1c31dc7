// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/config"
)

// -- Interfaces for Dependency Inversion --

// Worker resolves a single section.
type Worker interface {
	Resolve(ctx context.Context, runID string, section schemas.Section) (*schemas.SectionResult, error)
}

// Store persists section results.
type Store interface {
	PersistResult(ctx context.Context, res *schemas.SectionResult) error
}

// Sink receives every streamed section result, or the error that stopped the
// section. It is called from the worker goroutines and must be safe for
// concurrent use.
type Sink func(res *schemas.SectionResult, err error)

// ErrSectionPanic wraps a panic raised while resolving a section.
var ErrSectionPanic = errors.New("section resolution panicked")

const (
	defaultConcurrency = 4
	persistTimeout     = 30 * time.Second
)

// Engine distributes sections over a bounded pool of workers. Sections share
// nothing, so they are resolved independently.
type Engine struct {
	cfg    config.Interface
	logger *zap.Logger
	store  Store
	worker Worker
	wg     sync.WaitGroup

	// stateLock protects the running state of the streaming pool.
	stateLock sync.Mutex
	isRunning bool
}

// New creates an Engine. store may be nil, in which case results are not persisted.
func New(cfg config.Interface, logger *zap.Logger, store Store, worker Worker) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if worker == nil {
		return nil, errors.New("worker cannot be nil")
	}

	return &Engine{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "engine")),
		store:  store,
		worker: worker,
	}, nil
}

func (e *Engine) concurrency() int {
	if n := e.cfg.Engine().WorkerConcurrency; n > 0 {
		return n
	}
	return defaultConcurrency
}

// Run resolves a batch of sections. Results come back in input order. The first
// failing section cancels the rest and its error is returned.
func (e *Engine) Run(ctx context.Context, runID string, sections []schemas.Section) ([]schemas.SectionResult, error) {
	e.logger.Info("Resolving sections",
		zap.String("run_id", runID),
		zap.Int("sections", len(sections)),
		zap.Int("concurrency", e.concurrency()))

	results := make([]schemas.SectionResult, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())
	for i, section := range sections {
		g.Go(func() error {
			res, err := e.process(gctx, runID, section)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Start launches the worker pool for a stream of sections. Workers exit once
// sections is closed and drained or ctx is cancelled.
func (e *Engine) Start(ctx context.Context, runID string, sections <-chan schemas.Section, sink Sink) {
	e.stateLock.Lock()
	if e.isRunning {
		e.stateLock.Unlock()
		e.logger.Warn("Engine.Start called, but engine is already running.")
		return
	}
	e.isRunning = true
	e.stateLock.Unlock()

	concurrency := e.concurrency()
	e.logger.Info("Starting engine worker pool", zap.Int("concurrency", concurrency))
	for i := 0; i < concurrency; i++ {
		e.wg.Add(1)
		go e.runWorker(ctx, i+1, runID, sections, sink)
	}
}

// Stop waits for all streaming workers to finish.
func (e *Engine) Stop() {
	e.logger.Info("Stopping engine... waiting for workers to finish.")
	e.wg.Wait()

	e.stateLock.Lock()
	e.isRunning = false
	e.stateLock.Unlock()

	e.logger.Info("Engine stopped gracefully.")
}

func (e *Engine) runWorker(ctx context.Context, workerID int, runID string, sections <-chan schemas.Section, sink Sink) {
	defer e.wg.Done()
	logger := e.logger.With(zap.Int("worker_id", workerID))
	logger.Debug("Worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled, worker shutting down.", zap.Error(ctx.Err()))
			return
		case section, ok := <-sections:
			if !ok {
				logger.Debug("Section queue closed and drained, worker shutting down.")
				return
			}
			res, err := e.process(ctx, runID, section)
			if err != nil {
				logger.Error("Section failed", zap.String("section_id", section.ID), zap.Error(err))
			}
			sink(res, err)
		}
	}
}

// process resolves one section under the configured timeout and persists it.
func (e *Engine) process(ctx context.Context, runID string, section schemas.Section) (res *schemas.SectionResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if timeout := e.cfg.Engine().SectionTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err = e.resolve(ctx, runID, section)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Section resolved",
		zap.String("section_id", res.SectionID),
		zap.Int("groups", res.Groups),
		zap.Int("notifications", len(res.Notifications)),
		zap.Duration("duration", res.Duration))

	if e.store == nil {
		return res, nil
	}
	// Persist even if the run is being cancelled; the section itself is complete.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := e.store.PersistResult(persistCtx, res); err != nil {
		return nil, fmt.Errorf("failed to persist section %q: %w", res.SectionID, err)
	}
	return res, nil
}

// resolve calls the worker and turns a panic into an error naming the section.
func (e *Engine) resolve(ctx context.Context, runID string, section schemas.Section) (res *schemas.SectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Recovered from panic while resolving section",
				zap.String("section_id", section.ID),
				zap.Any("panic", r),
				zap.Stack("stack"))
			res, err = nil, fmt.Errorf("%w: section %q: %v", ErrSectionPanic, section.ID, r)
		}
	}()
	return e.worker.Resolve(ctx, runID, section)
}
