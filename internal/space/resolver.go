// internal/space/resolver.go
package space

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

// entry pairs a marker with its working length. A nil length means the
// marker has been eliminated.
type entry struct {
	elem   layout.LengthElement
	length *minoptmax.MinOptMax
}

// Resolver applies the XSL 4.3.1 space resolution rules to one run of
// unresolved markers and synthesizes the canonical atoms that replace it.
//
// Each of the three working arrays owns its lengths; eliminating an entry in
// one never affects the others.
type Resolver struct {
	id  ResolverID
	log *zap.Logger

	before  []entry
	brk     *layout.Break
	after   []entry
	noBreak []entry

	isFirst bool
	isLast  bool
}

// NewResolver builds a resolver over before, an optional break, and after,
// registers it in reg and runs the elimination rules. before is in list order
// (it ends at the break), after starts at the break.
//
// Malformed groups panic: a nil marker, or a pending mark of the break that is
// also part of the group.
func NewResolver(reg *Registry, before []layout.LengthElement, brk *layout.Break, after []layout.LengthElement,
	isFirst, isLast bool, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		brk:     brk,
		isFirst: isFirst,
		isLast:  isLast,
	}
	r.id = reg.register(r)
	r.log = logger.With(zap.Int("resolver", int(r.id)))

	// The no-break array never sees the pending marks of ancestors: they only
	// exist when the break is actually taken.
	r.noBreak = make([]entry, 0, len(before)+len(after))
	r.noBreak = appendEntries(r.noBreak, before)
	r.noBreak = appendEntries(r.noBreak, after)

	if brk != nil {
		checkPending(brk, before, after)
		if len(brk.PendingAfter) > 0 {
			r.log.Debug("Adding pending marks before the break", zap.Int("count", len(brk.PendingAfter)))
			before = prepend(before, brk.PendingAfter)
		}
		if len(brk.PendingBefore) > 0 {
			r.log.Debug("Adding pending marks after the break", zap.Int("count", len(brk.PendingBefore)))
			after = prepend(after, brk.PendingBefore)
		}
	}
	r.before = appendEntries(nil, before)
	r.after = appendEntries(nil, after)

	r.resolve()
	return r
}

// ID is the resolver's key in its registry.
func (r *Resolver) ID() ResolverID { return r.id }

// HasBreak reports whether the run contained a break candidate.
func (r *Resolver) HasBreak() bool { return r.brk != nil }

// Before returns the effective lengths of the markers before the break, nil
// for eliminated ones.
func (r *Resolver) Before() []*minoptmax.MinOptMax { return lengths(r.before) }

// After returns the effective lengths of the markers after the break.
func (r *Resolver) After() []*minoptmax.MinOptMax { return lengths(r.after) }

// NoBreak returns the effective lengths used when the break is not taken.
func (r *Resolver) NoBreak() []*minoptmax.MinOptMax { return lengths(r.noBreak) }

func (r *Resolver) resolve() {
	if r.brk != nil {
		if len(r.before) > 0 {
			r.removeConditionalBorderAndPadding(r.before, true)
			r.performRule1(r.before, true)
			r.performRules2to3(r.before)
		}
		if len(r.after) > 0 {
			r.removeConditionalBorderAndPadding(r.after, false)
			r.performRule1(r.after, false)
			r.performRules2to3(r.after)
		}
		if len(r.noBreak) > 0 {
			r.performRules2to3(r.noBreak)
		}
		return
	}

	if r.isFirst {
		r.removeConditionalBorderAndPadding(r.after, false)
		r.performRule1(r.after, false)
	}
	if r.isLast {
		r.removeConditionalBorderAndPadding(r.before, true)
		r.performRule1(r.before, true)
	}
	if len(r.before) > 0 {
		// With the isFirst/isLast conditions handled, the active part is looked
		// at in its normal order.
		r.log.Debug("Swapping before and after parts")
		r.before, r.after = r.after, r.before
		if len(r.before) > 0 {
			panic("space: no-break run has markers on both sides")
		}
	}
	r.performRules2to3(r.after)
}

// removeConditionalBorderAndPadding eliminates conditional borders and
// paddings that belong neither to the first nor to the last area of their
// formatting object.
func (r *Resolver) removeConditionalBorderAndPadding(entries []entry, reverse bool) {
	for i := range entries {
		e := &entries[effectiveIndex(i, len(entries), reverse)]
		bp, ok := e.elem.(*layout.BorderOrPadding)
		if !ok {
			continue
		}
		if bp.Conditional && !(bp.IsFirst || bp.IsLast) {
			r.eliminate(e, "conditional border/padding")
		}
	}
}

// performRule1 walks outward from the break and eliminates conditional
// markers until it meets a retained one or a border/padding fence.
func (r *Resolver) performRule1(entries []entry, reverse bool) {
	for i := range entries {
		e := &entries[effectiveIndex(i, len(entries), reverse)]
		if e.length == nil {
			// Eliminated borders and paddings no longer form a fence.
			continue
		}
		if _, fence := e.elem.(*layout.BorderOrPadding); fence {
			return
		}
		if !e.elem.Base().Conditional {
			return
		}
		r.eliminate(e, "rule 1")
	}
}

// performRules2to3 applies rules 2 and 3 to every maximal run of adjacent
// spaces. Eliminated spaces still belong to the run.
func (r *Resolver) performRules2to3(entries []entry) {
	i := 0
	for i < len(entries) {
		if _, ok := entries[i].elem.(*layout.Space); !ok {
			i++
			continue
		}
		start := i
		for i < len(entries) {
			if _, ok := entries[i].elem.(*layout.Space); !ok {
				break
			}
			i++
		}
		r.resolveSpaceRun(entries[start:i])
	}
}

func (r *Resolver) resolveSpaceRun(run []entry) {
	// Rule 2: a forcing space suppresses every non-forcing one.
	hasForcing := false
	for i := range run {
		if run[i].length != nil && run[i].elem.(*layout.Space).Forcing {
			hasForcing = true
			break
		}
	}
	if hasForcing {
		for i := range run {
			if run[i].length != nil && !run[i].elem.(*layout.Space).Forcing {
				r.eliminate(&run[i], "rule 2")
			}
		}
		return
	}

	// Rule 3: highest precedence wins.
	highest := math.MinInt
	for i := range run {
		if run[i].length != nil {
			highest = max(highest, run[i].elem.(*layout.Space).Precedence)
		}
	}
	remaining := 0
	for i := range run {
		if run[i].length == nil {
			continue
		}
		if run[i].elem.(*layout.Space).Precedence != highest {
			r.eliminate(&run[i], "rule 3, precedence")
		} else {
			remaining++
		}
	}

	// Then the greatest optimum.
	if remaining > 1 {
		greatest := int64(math.MinInt64)
		for i := range run {
			if run[i].length != nil {
				greatest = max(greatest, run[i].length.Opt)
			}
		}
		remaining = 0
		for i := range run {
			if run[i].length == nil {
				continue
			}
			if run[i].length.Opt < greatest {
				r.eliminate(&run[i], "rule 3, optimum")
			} else {
				remaining++
			}
		}
	}

	// Equal optima merge into the last survivor: the largest minimum and the
	// smallest maximum.
	if remaining > 1 {
		lo := int64(math.MinInt64)
		hi := int64(math.MaxInt64)
		for i := range run {
			if run[i].length == nil {
				continue
			}
			lo = max(lo, run[i].length.Min)
			hi = min(hi, run[i].length.Max)
			if remaining > 1 {
				r.eliminate(&run[i], "rule 3, merged")
				remaining--
			} else {
				merged := minoptmax.MinOptMax{Min: lo, Opt: run[i].length.Opt, Max: hi}
				run[i].length = &merged
				r.log.Debug("Merged space lengths", zap.Stringer("length", merged))
			}
		}
	}
}

func (r *Resolver) eliminate(e *entry, rule string) {
	r.log.Debug("Eliminating element", zap.String("rule", rule), zap.Stringer("element", e.elem))
	e.length = nil
}

// Generate synthesizes the canonical Box/Glue/Penalty atoms for the run.
func (r *Resolver) Generate() []layout.Element {
	var out []layout.Element
	glue1 := sum(r.before)
	glue3 := sum(r.after)

	hasPrecedingNonBlock := false
	if r.brk != nil {
		if glue1.IsNonZero() {
			out = append(out,
				layout.NewPenalty(0, layout.Infinite, false, layout.ClassAuto, nil, true),
				layout.GlueFrom(glue1, nil, true))
			if r.brk.IsForced() {
				// Keeps the breaker from discarding the glue in front of a forced break.
				out = append(out, &layout.Box{Auxiliary: true})
			}
		}
		out = append(out, layout.NewPenalty(r.brk.PenaltyWidth, r.brk.PenaltyValue, false, r.brk.BreakClass,
			&BreakPosition{Resolver: r.id, Original: r.brk.Pos}, false))
		if r.brk.PenaltyValue <= -layout.Infinite {
			return out
		}

		noBreakLength := sum(r.noBreak)
		spaceSum := glue1.Plus(glue3)
		glue2 := &layout.Glue{
			Width:     noBreakLength.Opt - spaceSum.Opt,
			Stretch:   noBreakLength.Stretch() - spaceSum.Stretch(),
			Shrink:    noBreakLength.Shrink() - spaceSum.Shrink(),
			Auxiliary: true,
		}
		if glue2.Width != 0 || glue2.Stretch != 0 || glue2.Shrink != 0 {
			out = append(out, glue2)
		}
	} else if glue1.IsNonZero() {
		panic(fmt.Sprintf("space: no-break run has space before the break: %s", glue1))
	}

	var pos layout.Position
	if r.brk == nil {
		pos = &NoBreakPosition{Resolver: r.id}
	}
	if glue3.IsNonZero() || pos != nil {
		out = append(out, &layout.Box{Pos: pos, Auxiliary: true})
	}
	if glue3.IsNonZero() {
		out = append(out,
			layout.NewPenalty(0, layout.Infinite, false, layout.ClassAuto, nil, true),
			layout.GlueFrom(glue3, nil, true))
		hasPrecedingNonBlock = true
	}
	if r.isLast && hasPrecedingNonBlock {
		// End-of-list counterpart of the forced break guard above.
		out = append(out, &layout.Box{Auxiliary: true})
	}
	return out
}

// notifyBreakSituation reports a break penalty's outcome to the markers it
// concerns: the after part when the break precedes the region, the before part
// when it ends the region, the no-break part otherwise.
func (r *Resolver) notifyBreakSituation(outcome layout.Outcome) {
	switch outcome {
	case layout.AfterBreak:
		notifyAll(r.after, outcome)
	case layout.BeforeBreak:
		notifyAll(r.before, outcome)
	default:
		notifyAll(r.noBreak, layout.NoBreak)
	}
}

func (r *Resolver) notifySpaceSituation() {
	if r.brk != nil {
		panic("space: space situation notification is only valid for no-break runs")
	}
	notifyAll(r.after, layout.NoBreak)
}

// -- Helpers --

func notifyAll(entries []entry, outcome layout.Outcome) {
	for _, e := range entries {
		e.elem.Notify(outcome, e.length)
	}
}

func sum(entries []entry) minoptmax.MinOptMax {
	total := minoptmax.Zero
	for _, e := range entries {
		if e.length != nil {
			total = total.Plus(*e.length)
		}
	}
	return total
}

func lengths(entries []entry) []*minoptmax.MinOptMax {
	out := make([]*minoptmax.MinOptMax, len(entries))
	for i, e := range entries {
		if e.length != nil {
			l := *e.length
			out[i] = &l
		}
	}
	return out
}

func effectiveIndex(i, n int, reverse bool) int {
	if reverse {
		return n - 1 - i
	}
	return i
}

func appendEntries(dst []entry, elems []layout.LengthElement) []entry {
	for _, el := range elems {
		if el == nil {
			panic("space: nil marker in resolution group")
		}
		l := el.Base().Length
		dst = append(dst, entry{elem: el, length: &l})
	}
	return dst
}

func prepend(list, marks []layout.LengthElement) []layout.LengthElement {
	out := make([]layout.LengthElement, 0, len(marks)+len(list))
	out = append(out, marks...)
	return append(out, list...)
}

// checkPending rejects pending marks that are also members of the group: they
// would be resolved and notified twice.
func checkPending(brk *layout.Break, before, after []layout.LengthElement) {
	members := make(map[layout.LengthElement]struct{}, len(before)+len(after))
	for _, el := range before {
		members[el] = struct{}{}
	}
	for _, el := range after {
		members[el] = struct{}{}
	}
	for _, marks := range [][]layout.LengthElement{brk.PendingBefore, brk.PendingAfter} {
		for _, m := range marks {
			if m == nil {
				panic("space: nil pending mark on break")
			}
			if _, dup := members[m]; dup {
				panic(fmt.Sprintf("space: pending mark %s is already part of the group", m))
			}
			members[m] = struct{}{}
		}
	}
}
