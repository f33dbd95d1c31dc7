// internal/space/replay.go
package space

import (
	"github.com/xkilldash9x/fospace/internal/layout"
)

// PerformConditionalsNotification tells the producers of the resolved markers
// in list[start:end+1] what the breaking decision meant for them.
//
// prevBreak is the index of the break chosen just before the region, or -1.
// If the element at end is a break penalty, that break was taken as well.
// Every resolver in the region is notified exactly once: the boundary breaks
// with their before or after side, everything else as not broken.
func PerformConditionalsNotification(list []layout.Element, start, end, prevBreak int, reg *Registry) {
	var beforeBreak, afterBreak *BreakPosition

	if prevBreak >= 0 && prevBreak < len(list) {
		if pos := breakPositionAt(list, prevBreak); pos != nil {
			beforeBreak = pos
			reg.Lookup(pos.Resolver).notifyBreakSituation(layout.AfterBreak)
		}
	}
	if end >= 0 && end < len(list) {
		if pos := breakPositionAt(list, end); pos != nil {
			afterBreak = pos
			reg.Lookup(pos.Resolver).notifyBreakSituation(layout.BeforeBreak)
		}
	}

	if start < 0 {
		start = 0
	}
	for i := start; i <= end && i < len(list); i++ {
		switch pos := list[i].Position().(type) {
		case *NoBreakPosition:
			reg.Lookup(pos.Resolver).notifySpaceSituation()
		case *BreakPosition:
			if pos != beforeBreak && pos != afterBreak {
				reg.Lookup(pos.Resolver).notifyBreakSituation(layout.NoBreak)
			}
		}
	}
}

// NotifyBreaks replays a complete breaking decision. breaks holds the indexes
// of the chosen break penalties in ascending order; the content after the last
// break forms the final region.
func NotifyBreaks(list []layout.Element, breaks []int, reg *Registry) {
	prev := -1
	for _, b := range breaks {
		PerformConditionalsNotification(list, prev+1, b, prev, reg)
		prev = b
	}
	end := len(list) - 1
	if prev == end {
		// The list ends on the break: only its after part is left to report.
		end = len(list)
	}
	if prev < end {
		PerformConditionalsNotification(list, prev+1, end, prev, reg)
	}
}

func breakPositionAt(list []layout.Element, i int) *BreakPosition {
	p, ok := list[i].(*layout.Penalty)
	if !ok {
		return nil
	}
	pos, _ := p.Pos.(*BreakPosition)
	return pos
}
