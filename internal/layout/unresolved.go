// internal/layout/unresolved.go
package layout

import (
	"fmt"

	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

// Unresolved holds the attributes shared by every length-carrying marker.
type Unresolved struct {
	Length      minoptmax.MinOptMax
	Conditional bool
	// Side is the edge of the originating formatting object.
	Side RelSide
	// IsFirst and IsLast refer to the originating formatting object's areas,
	// not to the element list.
	IsFirst  bool
	IsLast   bool
	Listener ConditionalElementListener
	Pos      Position
}

func (u *Unresolved) Base() *Unresolved  { return u }
func (u *Unresolved) IsUnresolved() bool { return true }
func (u *Unresolved) Position() Position { return u.Pos }

func (u *Unresolved) notify(kind Kind, outcome Outcome, effective *minoptmax.MinOptMax) {
	if u.Listener == nil {
		return
	}
	u.Listener.Commit(Notification{
		Outcome:   outcome,
		Kind:      kind,
		Side:      u.Side,
		Effective: effective,
		Pos:       u.Pos,
	})
}

func (u *Unresolved) describe() string {
	s := fmt.Sprintf("%s %s", u.Side, u.Length)
	if u.Conditional {
		s += " cond"
	}
	if u.IsFirst {
		s += " first"
	}
	if u.IsLast {
		s += " last"
	}
	if u.Pos != nil {
		s += " pos=" + u.Pos.String()
	}
	return s
}

// Space is an unresolved space specifier.
type Space struct {
	Unresolved
	Precedence int
	// Forcing spaces are never eliminated by the precedence rules.
	Forcing bool
}

func (s *Space) Notify(outcome Outcome, effective *minoptmax.MinOptMax) {
	s.notify(KindSpace, outcome, effective)
}

func (s *Space) String() string {
	prec := fmt.Sprint(s.Precedence)
	if s.Forcing {
		prec = "force"
	}
	return fmt.Sprintf("space[%s precedence=%s]", s.describe(), prec)
}

// EdgeKind tells borders and paddings apart.
type EdgeKind int

const (
	EdgeBorder EdgeKind = iota
	EdgePadding
)

// BorderOrPadding is an unresolved border or padding width. It is a fence for
// the elimination of conditional neighbors.
type BorderOrPadding struct {
	Unresolved
	Kind EdgeKind
}

func (b *BorderOrPadding) Notify(outcome Outcome, effective *minoptmax.MinOptMax) {
	kind := KindBorder
	if b.Kind == EdgePadding {
		kind = KindPadding
	}
	b.notify(kind, outcome, effective)
}

func (b *BorderOrPadding) String() string {
	name := "border"
	if b.Kind == EdgePadding {
		name = "padding"
	}
	return fmt.Sprintf("%s[%s]", name, b.describe())
}

// Break is a break candidate inside a run of unresolved markers. It carries
// marks contributed by ancestor formatting objects that only apply when the
// break is taken.
type Break struct {
	PenaltyWidth int64
	PenaltyValue int64
	BreakClass   BreakClass
	// PendingBefore marks belong after the break (the before edges of ancestors).
	PendingBefore []LengthElement
	// PendingAfter marks belong before the break (the after edges of ancestors).
	PendingAfter []LengthElement
	Pos          Position
}

// IsForced reports whether the break is unconditional.
func (b *Break) IsForced() bool { return b.PenaltyValue <= -Infinite }

func (b *Break) IsUnresolved() bool { return true }
func (b *Break) Position() Position { return b.Pos }
func (b *Break) String() string {
	return fmt.Sprintf("break[w=%d p=%d class=%s pending-before=%d pending-after=%d]",
		b.PenaltyWidth, b.PenaltyValue, b.BreakClass, len(b.PendingBefore), len(b.PendingAfter))
}
