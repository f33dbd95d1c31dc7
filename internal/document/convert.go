// internal/document/convert.go
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

var (
	// ErrUnknownElement is returned for an element type the converter does not know.
	ErrUnknownElement = errors.New("unknown element type")
	// ErrInvalidElement is returned for an element whose fields cannot describe a valid element.
	ErrInvalidElement = errors.New("invalid element")
)

// Section is a wire section turned into a layout element list. Every marker
// reports to Recorder.
type Section struct {
	ID       string
	Elements []layout.Element
	Breaks   []int
	Recorder *Recorder
}

// Build converts a wire section. Markers without a name are named after their
// type and index ("space#3", "border#5.after0" for pending marks).
func Build(spec schemas.Section) (*Section, error) {
	s := &Section{
		ID:       spec.ID,
		Breaks:   spec.Breaks,
		Recorder: &Recorder{},
		Elements: make([]layout.Element, 0, len(spec.Elements)),
	}
	for i, es := range spec.Elements {
		el, err := s.element(es, fmt.Sprintf("%s#%d", es.Type, i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		s.Elements = append(s.Elements, el)
	}
	return s, nil
}

func (s *Section) element(es schemas.ElementSpec, fallback string) (layout.Element, error) {
	switch es.Type {
	case schemas.ElementBox:
		return &layout.Box{Width: es.Width, Pos: named(es.Name)}, nil
	case schemas.ElementGlue:
		if es.Stretch < 0 || es.Shrink < 0 {
			return nil, fmt.Errorf("%w: glue with negative stretch or shrink", ErrInvalidElement)
		}
		return &layout.Glue{Width: es.Width, Stretch: es.Stretch, Shrink: es.Shrink, Pos: named(es.Name)}, nil
	case schemas.ElementPenalty:
		class := layout.ParseBreakClass(es.BreakClass)
		return layout.NewPenalty(es.Width, es.Value, es.Flagged, class, named(es.Name), false), nil
	case schemas.ElementSpace, schemas.ElementBorder, schemas.ElementPadding:
		return s.marker(es, fallback)
	case schemas.ElementBreak:
		return s.breakElement(es, fallback)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownElement, es.Type)
}

func (s *Section) marker(es schemas.ElementSpec, fallback string) (layout.LengthElement, error) {
	name := es.Name
	if name == "" {
		name = fallback
	}

	length, err := markerLength(es)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	side, err := parseSide(es.Side)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	base := layout.Unresolved{
		Length:      length,
		Conditional: es.Conditional,
		Side:        side,
		IsFirst:     es.First,
		IsLast:      es.Last,
		Listener:    s.Recorder.For(name),
		Pos:         layout.NamedPosition(name),
	}
	switch es.Type {
	case schemas.ElementSpace:
		return &layout.Space{Unresolved: base, Precedence: es.Precedence, Forcing: es.Forcing}, nil
	case schemas.ElementPadding:
		return &layout.BorderOrPadding{Unresolved: base, Kind: layout.EdgePadding}, nil
	case schemas.ElementBorder:
		return &layout.BorderOrPadding{Unresolved: base, Kind: layout.EdgeBorder}, nil
	}
	return nil, fmt.Errorf("%w: %q cannot be a length marker", ErrInvalidElement, es.Type)
}

func (s *Section) breakElement(es schemas.ElementSpec, fallback string) (*layout.Break, error) {
	brk := &layout.Break{
		PenaltyWidth: es.Width,
		PenaltyValue: layout.SaturatePenalty(es.Value),
		BreakClass:   layout.ParseBreakClass(es.BreakClass),
		Pos:          named(es.Name),
	}
	var err error
	if brk.PendingBefore, err = s.pendingMarks(es.PendingBefore, fallback+".before"); err != nil {
		return nil, err
	}
	if brk.PendingAfter, err = s.pendingMarks(es.PendingAfter, fallback+".after"); err != nil {
		return nil, err
	}
	return brk, nil
}

func (s *Section) pendingMarks(specs []schemas.ElementSpec, prefix string) ([]layout.LengthElement, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	marks := make([]layout.LengthElement, 0, len(specs))
	for i, es := range specs {
		switch es.Type {
		case schemas.ElementSpace, schemas.ElementBorder, schemas.ElementPadding:
		default:
			return nil, fmt.Errorf("%w: pending mark of type %q", ErrInvalidElement, es.Type)
		}
		m, err := s.marker(es, fmt.Sprintf("%s%d", prefix, i))
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, nil
}

// markerLength reads a marker's range. Borders and paddings may give a plain
// width instead of min/opt/max.
func markerLength(es schemas.ElementSpec) (minoptmax.MinOptMax, error) {
	if es.Type != schemas.ElementSpace && es.Min == 0 && es.Opt == 0 && es.Max == 0 {
		return minoptmax.Fixed(es.Width), nil
	}
	if es.Type == schemas.ElementSpace && es.Min == 0 && es.Max == 0 && es.Opt != 0 {
		// A space given only its optimum is stiff.
		return minoptmax.Fixed(es.Opt), nil
	}
	return minoptmax.New(es.Min, es.Opt, es.Max)
}

func parseSide(raw string) (layout.RelSide, error) {
	switch strings.ToLower(raw) {
	case "", schemas.SideBefore:
		return layout.Before, nil
	case schemas.SideAfter:
		return layout.After, nil
	}
	return layout.Before, fmt.Errorf("%w: unknown side %q", ErrInvalidElement, raw)
}

func named(name string) layout.Position {
	if name == "" {
		return nil
	}
	return layout.NamedPosition(name)
}
