package space

import (
	"fmt"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/fospace/internal/layout"
	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

// FuzzResolveElementList builds arbitrary mixes of content and markers and
// checks that resolution leaves only canonical atoms and that replaying any
// choice of breaks notifies every marker exactly once.
func FuzzResolveElementList(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	f.Add([]byte{3, 3, 3, 1, 2, 4, 0, 0, 9, 9, 9, 2, 1})
	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		rec := &recorder{}
		var list []layout.Element
		markers := 0

		for len(list) < 40 {
			kind, err := c.GetByte()
			if err != nil {
				break
			}
			switch kind % 4 {
			case 0:
				list = append(list, box(int64(kind)))
			case 1:
				value, err := c.GetByte()
				if err != nil {
					break
				}
				list = append(list, &layout.Break{PenaltyValue: int64(value)*10 - 1280})
			case 2, 3:
				length, ok := fuzzLength(c)
				if !ok {
					break
				}
				flags, err := c.GetByte()
				if err != nil {
					break
				}
				name := fmt.Sprintf("m%d", markers)
				markers++
				base := layout.Unresolved{
					Length:      length,
					Conditional: flags&1 != 0,
					IsFirst:     flags&2 != 0,
					IsLast:      flags&4 != 0,
					Listener:    rec.listener(name),
				}
				if kind%4 == 2 {
					list = append(list, &layout.Space{Unresolved: base, Precedence: int(flags>>4) % 3, Forcing: flags&8 != 0})
				} else {
					list = append(list, &layout.BorderOrPadding{Unresolved: base, Kind: layout.EdgeKind(flags >> 7)})
				}
			}
		}

		reg := NewRegistry()
		out := ResolveElementList(list, reg, nil)
		for _, el := range out {
			require.False(t, el.IsUnresolved(), "marker survived resolution: %s", el)
		}

		var breaks []int
		for i, el := range out {
			if _, ok := el.Position().(*BreakPosition); ok {
				take, err := c.GetBool()
				if err == nil && take {
					breaks = append(breaks, i)
				}
			}
		}
		NotifyBreaks(out, breaks, reg)

		for i := 0; i < markers; i++ {
			assert.Len(t, rec.byName(fmt.Sprintf("m%d", i)), 1, "marker m%d", i)
		}
	})
}

func fuzzLength(c *fuzz.ConsumeFuzzer) (minoptmax.MinOptMax, bool) {
	var parts [3]int64
	for i := range parts {
		b, err := c.GetByte()
		if err != nil {
			return minoptmax.MinOptMax{}, false
		}
		parts[i] = int64(b)
	}
	return minoptmax.MustNew(parts[0], parts[0]+parts[1], parts[0]+parts[1]+parts[2]), true
}
