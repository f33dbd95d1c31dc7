package space

import (
	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

// -- Test Helpers --

// record is one notification captured by a recorder.
type record struct {
	name string
	n    layout.Notification
}

// recorder collects notifications from every marker it is attached to.
type recorder struct {
	records []record
}

func (r *recorder) listener(name string) layout.ConditionalElementListener {
	return layout.ListenerFunc(func(n layout.Notification) {
		r.records = append(r.records, record{name: name, n: n})
	})
}

func (r *recorder) byName(name string) []layout.Notification {
	var out []layout.Notification
	for _, rec := range r.records {
		if rec.name == name {
			out = append(out, rec.n)
		}
	}
	return out
}

type spaceOpt func(*layout.Space)

func conditional(s *layout.Space) { s.Conditional = true }
func forcing(s *layout.Space)     { s.Forcing = true }
func precedence(p int) spaceOpt   { return func(s *layout.Space) { s.Precedence = p } }
func sideAfter(s *layout.Space)   { s.Side = layout.After }
func listen(l layout.ConditionalElementListener) spaceOpt {
	return func(s *layout.Space) { s.Listener = l }
}

func newSpace(min, opt, max int64, opts ...spaceOpt) *layout.Space {
	s := &layout.Space{Unresolved: layout.Unresolved{Length: minoptmax.MustNew(min, opt, max)}}
	for _, o := range opts {
		o(s)
	}
	return s
}

func newBorder(width int64, cond, first, last bool) *layout.BorderOrPadding {
	return &layout.BorderOrPadding{
		Unresolved: layout.Unresolved{
			Length:      minoptmax.Fixed(width),
			Conditional: cond,
			IsFirst:     first,
			IsLast:      last,
		},
		Kind: layout.EdgeBorder,
	}
}

func box(w int64) *layout.Box { return &layout.Box{Width: w} }

func auxBox(pos layout.Position) *layout.Box { return &layout.Box{Pos: pos, Auxiliary: true} }

func auxGlue(w, stretch, shrink int64) *layout.Glue {
	return &layout.Glue{Width: w, Stretch: stretch, Shrink: shrink, Auxiliary: true}
}

func infPenalty() *layout.Penalty {
	return layout.NewPenalty(0, layout.Infinite, false, layout.ClassAuto, nil, true)
}

func breakPenalty(value int64, id ResolverID) *layout.Penalty {
	return layout.NewPenalty(0, value, false, layout.ClassAuto, &BreakPosition{Resolver: id}, false)
}

func lengthsOf(elems ...layout.LengthElement) []layout.LengthElement { return elems }

func mom(min, opt, max int64) *minoptmax.MinOptMax {
	m := minoptmax.MustNew(min, opt, max)
	return &m
}
