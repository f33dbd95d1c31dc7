package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/config"
	"github.com/xkilldash9x/fospace/internal/document"
	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/observability"
	"github.com/xkilldash9x/fospace/internal/space"
)

// ErrInvalidBreak reports a chosen break that does not index a legal break penalty.
var ErrInvalidBreak = errors.New("invalid break")

// SectionWorker runs the full pipeline for one section: build, resolve,
// replay the breaking decision, encode.
type SectionWorker struct {
	cfg    config.Interface
	logger *zap.Logger
}

// NewSectionWorker creates a worker reading resolver settings from cfg.
func NewSectionWorker(cfg config.Interface, logger *zap.Logger) *SectionWorker {
	return &SectionWorker{cfg: cfg, logger: logger}
}

// Resolve implements Worker. A section without an ID gets a random one.
func (w *SectionWorker) Resolve(ctx context.Context, runID string, section schemas.Section) (*schemas.SectionResult, error) {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	sec, err := document.Build(section)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", section.ID, err)
	}

	rcfg := w.cfg.Resolver()
	logger := observability.ResolverLogger(w.logger, rcfg).With(zap.String("section_id", sec.ID))
	reg := space.NewRegistry()
	resolved := space.ResolveElementList(sec.Elements, reg, logger)
	if rcfg.KeepTogether {
		resolved = layout.RemoveLegalBreaks(resolved)
	}

	breaks, err := chooseBreaks(resolved, sec.Breaks)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", sec.ID, err)
	}
	space.NotifyBreaks(resolved, breaks, reg)

	atoms, err := document.ToAtoms(resolved)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", sec.ID, err)
	}

	return &schemas.SectionResult{
		RunID:           runID,
		SectionID:       sec.ID,
		Resolved:        atoms,
		Notifications:   sec.Recorder.Records(),
		Groups:          reg.Len(),
		Breaks:          breaks,
		BreakCandidates: document.BreakIndexes(resolved),
		Duration:        time.Since(start),
		ResolvedAt:      time.Now().UTC(),
	}, nil
}

// chooseBreaks validates the requested breaks against the resolved list.
// Forced breaks are always taken: with no request they are the whole choice,
// and a request that leaves one out is rejected.
func chooseBreaks(list []layout.Element, requested []int) ([]int, error) {
	forced := forcedBreaks(list)
	if len(requested) == 0 {
		return forced, nil
	}

	prev := -1
	for _, i := range requested {
		if i <= prev {
			return nil, fmt.Errorf("%w: %d is not in ascending order", ErrInvalidBreak, i)
		}
		if i < 0 || i >= len(list) {
			return nil, fmt.Errorf("%w: index %d outside a list of %d", ErrInvalidBreak, i, len(list))
		}
		p, ok := list[i].(*layout.Penalty)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %s, not a penalty", ErrInvalidBreak, i, list[i])
		}
		if p.IsForbidden() {
			return nil, fmt.Errorf("%w: penalty %d forbids breaking", ErrInvalidBreak, i)
		}
		prev = i
	}

	taken := make(map[int]bool, len(requested))
	for _, i := range requested {
		taken[i] = true
	}
	for _, i := range forced {
		if !taken[i] {
			return nil, fmt.Errorf("%w: forced break %d must be taken", ErrInvalidBreak, i)
		}
	}
	return requested, nil
}

func forcedBreaks(list []layout.Element) []int {
	var forced []int
	for i, el := range list {
		if p, ok := el.(*layout.Penalty); ok && p.IsForced() {
			forced = append(forced, i)
		}
	}
	return forced
}
