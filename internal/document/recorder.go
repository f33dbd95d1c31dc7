// internal/document/recorder.go
package document

import (
	"fmt"

	"github.com/xkilldash9x/fospace/api/schemas"
	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/space"
)

// Recorder collects the notifications delivered to a section's markers in
// delivery order. It belongs to one section and is not safe for concurrent use.
type Recorder struct {
	records []schemas.NotificationRecord
}

// For returns a listener that records notifications under name.
func (r *Recorder) For(name string) layout.ConditionalElementListener {
	return layout.ListenerFunc(func(n layout.Notification) {
		rec := schemas.NotificationRecord{
			Element: name,
			Kind:    n.Kind.String(),
			Side:    n.Side.String(),
			Outcome: n.Outcome.String(),
		}
		if n.Effective != nil {
			rec.Effective = &schemas.Length{Min: n.Effective.Min, Opt: n.Effective.Opt, Max: n.Effective.Max}
		}
		r.records = append(r.records, rec)
	})
}

// Records returns the notifications received so far.
func (r *Recorder) Records() []schemas.NotificationRecord {
	out := make([]schemas.NotificationRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len is the number of notifications received.
func (r *Recorder) Len() int { return len(r.records) }

// -- Resolved list encoding --

// ToAtoms encodes a resolved list for reporting. Unresolved markers left in
// the list are an error.
func ToAtoms(list []layout.Element) ([]schemas.AtomSpec, error) {
	atoms := make([]schemas.AtomSpec, 0, len(list))
	for i, el := range list {
		var a schemas.AtomSpec
		switch e := el.(type) {
		case *layout.Box:
			a = schemas.AtomSpec{Type: schemas.ElementBox, Width: e.Width, Auxiliary: e.Auxiliary}
		case *layout.Glue:
			a = schemas.AtomSpec{Type: schemas.ElementGlue, Width: e.Width, Stretch: e.Stretch, Shrink: e.Shrink, Auxiliary: e.Auxiliary}
		case *layout.Penalty:
			a = schemas.AtomSpec{Type: schemas.ElementPenalty, Width: e.Width, Value: e.Value, Flagged: e.Flagged, Auxiliary: e.Auxiliary}
			if e.BreakClass != layout.ClassAuto {
				a.BreakClass = e.BreakClass.String()
			}
		default:
			return nil, fmt.Errorf("%w: unresolved %s at index %d", ErrInvalidElement, el, i)
		}
		if pos := el.Position(); pos != nil {
			a.Position = pos.String()
		}
		atoms = append(atoms, a)
	}
	return atoms, nil
}

// BreakIndexes lists the indexes of the break penalties synthesized by the
// resolver that still allow a break, in list order.
func BreakIndexes(list []layout.Element) []int {
	var idx []int
	for i, el := range list {
		p, ok := el.(*layout.Penalty)
		if !ok || p.IsForbidden() {
			continue
		}
		if _, ok := p.Pos.(*space.BreakPosition); ok {
			idx = append(idx, i)
		}
	}
	return idx
}
