// internal/space/builder.go
package space

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/internal/layout"
)

// Group is one run of unresolved markers found in an element list.
type Group struct {
	// Start and End delimit the run in the input list, End exclusive.
	Start, End int
	Before     []layout.LengthElement
	Break      *layout.Break
	After      []layout.LengthElement
	IsFirst    bool
	IsLast     bool
}

// CollectGroups partitions elems into resolution groups in a single left to
// right pass. A group is a maximal run of unresolved markers holding at most
// one Break; a second Break starts the next group. An already resolved list
// yields no groups.
func CollectGroups(elems []layout.Element) []Group {
	var groups []Group
	i := 0
	for i < len(elems) {
		if !elems[i].IsUnresolved() {
			i++
			continue
		}

		g := Group{Start: i, IsFirst: i == 0}
		collectingBefore := true
		if brk, ok := elems[i].(*layout.Break); ok {
			g.Break = brk
			collectingBefore = false
		} else {
			g.Before = append(g.Before, lengthElement(elems[i]))
		}

		i++
		g.IsLast = true
		for i < len(elems) {
			el := elems[i]
			if !el.IsUnresolved() {
				g.IsLast = false
				break
			}
			if brk, ok := el.(*layout.Break); ok {
				if g.Break != nil {
					g.IsLast = false
					break
				}
				g.Break = brk
				collectingBefore = false
			} else if collectingBefore {
				g.Before = append(g.Before, lengthElement(el))
			} else {
				g.After = append(g.After, lengthElement(el))
			}
			i++
		}
		g.End = i

		if g.Break == nil && len(g.After) == 0 && !g.IsLast {
			// A no-break run followed by content: its markers lead into the
			// content, so they belong to the after part.
			g.Before, g.After = g.After, g.Before
		}
		groups = append(groups, g)
	}
	return groups
}

// ResolveElementList replaces every run of unresolved markers in elems by the
// canonical atoms its resolver generates. Resolvers are registered in reg so
// the notification replay can find them again.
func ResolveElementList(elems []layout.Element, reg *Registry, logger *zap.Logger) []layout.Element {
	if logger == nil {
		logger = zap.NewNop()
	}
	groups := CollectGroups(elems)
	if len(groups) == 0 {
		return elems
	}

	out := make([]layout.Element, 0, len(elems))
	prev := 0
	for _, g := range groups {
		out = append(out, elems[prev:g.Start]...)
		logger.Debug("Starting space resolution",
			zap.Int("start", g.Start), zap.Int("end", g.End),
			zap.Bool("first", g.IsFirst), zap.Bool("last", g.IsLast))
		res := NewResolver(reg, g.Before, g.Break, g.After, g.IsFirst, g.IsLast, logger)
		out = append(out, res.Generate()...)
		prev = g.End
	}
	return append(out, elems[prev:]...)
}

func lengthElement(el layout.Element) layout.LengthElement {
	le, ok := el.(layout.LengthElement)
	if !ok {
		panic(fmt.Sprintf("space: unresolved element %s carries no length", el))
	}
	return le
}
