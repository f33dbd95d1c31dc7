// internal/layout/element.go
package layout

import (
	"fmt"

	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

// -- Constants and Configuration --

// Infinite is the penalty value at which a break becomes mandatory (negative)
// or forbidden (positive). Penalty values saturate at ±Infinite.
const Infinite int64 = 1000

// -- Core Interfaces --

// Position is an opaque token that lets a producer be found again after the
// breaking algorithm has chosen its breaks.
type Position interface {
	String() string
}

// Element is an entry in a layout element list. Resolved elements are the
// canonical atoms (Box, Glue, Penalty). Unresolved elements are markers the
// space resolver must rewrite before breaking.
type Element interface {
	IsUnresolved() bool
	Position() Position
	String() string
}

// LengthElement is an unresolved element carrying a length range: a Space or
// a BorderOrPadding.
type LengthElement interface {
	Element
	Base() *Unresolved
	// Notify tells the producer which outcome applied to the element and what
	// its effective length is. A nil length means the element was eliminated.
	Notify(outcome Outcome, effective *minoptmax.MinOptMax)
}

// -- Enumerations --

// RelSide is the edge of the originating formatting object an element belongs to.
type RelSide int

const (
	// Before is the leading edge (space-before, border-before, ...).
	Before RelSide = iota
	// After is the trailing edge.
	After
)

func (s RelSide) String() string {
	if s == After {
		return "after"
	}
	return "before"
}

// BreakClass constrains where a break places the following content.
type BreakClass int

const (
	ClassAuto BreakClass = iota
	ClassLine
	ClassColumn
	ClassPage
	ClassEvenPage
	ClassOddPage
)

var breakClassNames = map[BreakClass]string{
	ClassAuto:     "auto",
	ClassLine:     "line",
	ClassColumn:   "column",
	ClassPage:     "page",
	ClassEvenPage: "even-page",
	ClassOddPage:  "odd-page",
}

func (c BreakClass) String() string {
	if n, ok := breakClassNames[c]; ok {
		return n
	}
	return fmt.Sprintf("BreakClass(%d)", int(c))
}

// ParseBreakClass maps a class name to its BreakClass. Unknown or empty names yield ClassAuto.
func ParseBreakClass(name string) BreakClass {
	for c, n := range breakClassNames {
		if n == name {
			return c
		}
	}
	return ClassAuto
}

// -- Resolved Atoms --

// Box is non-breakable content of a fixed width.
type Box struct {
	Width     int64
	Pos       Position
	Auxiliary bool
}

func (b *Box) IsUnresolved() bool { return false }
func (b *Box) Position() Position { return b.Pos }
func (b *Box) String() string {
	return fmt.Sprintf("box w=%d%s", b.Width, describePos(b.Pos, b.Auxiliary))
}

// Glue is stretchable and shrinkable space.
type Glue struct {
	Width     int64
	Stretch   int64
	Shrink    int64
	Pos       Position
	Auxiliary bool
}

// GlueFrom derives a glue from a length range as (opt, max-opt, opt-min).
func GlueFrom(m minoptmax.MinOptMax, pos Position, aux bool) *Glue {
	return &Glue{Width: m.Opt, Stretch: m.Stretch(), Shrink: m.Shrink(), Pos: pos, Auxiliary: aux}
}

func (g *Glue) IsUnresolved() bool { return false }
func (g *Glue) Position() Position { return g.Pos }
func (g *Glue) String() string {
	return fmt.Sprintf("glue w=%d stretch=%d shrink=%d%s", g.Width, g.Stretch, g.Shrink, describePos(g.Pos, g.Auxiliary))
}

// Penalty is a break candidate with a cost.
type Penalty struct {
	Width      int64
	Value      int64
	Flagged    bool
	BreakClass BreakClass
	Pos        Position
	Auxiliary  bool
}

// NewPenalty builds a penalty, saturating value at ±Infinite.
func NewPenalty(width, value int64, flagged bool, class BreakClass, pos Position, aux bool) *Penalty {
	return &Penalty{
		Width:      width,
		Value:      SaturatePenalty(value),
		Flagged:    flagged,
		BreakClass: class,
		Pos:        pos,
		Auxiliary:  aux,
	}
}

// SaturatePenalty clamps a penalty value into [-Infinite, Infinite].
func SaturatePenalty(v int64) int64 {
	if v > Infinite {
		return Infinite
	}
	if v < -Infinite {
		return -Infinite
	}
	return v
}

// IsForced reports whether the penalty is a mandatory break.
func (p *Penalty) IsForced() bool { return p.Value <= -Infinite }

// IsForbidden reports whether breaking at the penalty is never allowed.
func (p *Penalty) IsForbidden() bool { return p.Value >= Infinite }

func (p *Penalty) IsUnresolved() bool { return false }
func (p *Penalty) Position() Position { return p.Pos }
func (p *Penalty) String() string {
	value := fmt.Sprint(p.Value)
	switch {
	case p.IsForced():
		value = "-INF"
	case p.IsForbidden():
		value = "INF"
	}
	flag := ""
	if p.Flagged {
		flag = " flagged"
	}
	class := ""
	if p.BreakClass != ClassAuto {
		class = " class=" + p.BreakClass.String()
	}
	return fmt.Sprintf("penalty w=%d p=%s%s%s%s", p.Width, value, flag, class, describePos(p.Pos, p.Auxiliary))
}

func describePos(pos Position, aux bool) string {
	s := ""
	if aux {
		s += " aux"
	}
	if pos != nil {
		s += " pos=" + pos.String()
	}
	return s
}
