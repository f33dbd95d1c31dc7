package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/fospace/internal/minoptmax"
)

func TestGlueFrom(t *testing.T) {
	g := GlueFrom(minoptmax.MustNew(2, 5, 9), nil, true)
	assert.Equal(t, int64(5), g.Width)
	assert.Equal(t, int64(4), g.Stretch)
	assert.Equal(t, int64(3), g.Shrink)
	assert.True(t, g.Auxiliary)
	assert.False(t, g.IsUnresolved())
}

func TestPenaltySaturation(t *testing.T) {
	assert.Equal(t, Infinite, NewPenalty(0, 5000, false, ClassAuto, nil, false).Value)
	assert.Equal(t, -Infinite, NewPenalty(0, -5000, false, ClassAuto, nil, false).Value)
	assert.Equal(t, int64(50), NewPenalty(0, 50, false, ClassAuto, nil, false).Value)

	forced := NewPenalty(0, -Infinite, false, ClassPage, nil, false)
	assert.True(t, forced.IsForced())
	assert.Equal(t, "penalty w=0 p=-INF class=page", forced.String())

	forbidden := NewPenalty(0, Infinite, false, ClassAuto, NamedPosition("p1"), true)
	assert.True(t, forbidden.IsForbidden())
	assert.Equal(t, "penalty w=0 p=INF aux pos=p1", forbidden.String())
}

func TestUnresolvedMarkers(t *testing.T) {
	var got []Notification
	listener := ListenerFunc(func(n Notification) { got = append(got, n) })

	space := &Space{
		Unresolved: Unresolved{
			Length:      minoptmax.MustNew(1, 2, 3),
			Conditional: true,
			Side:        After,
			Listener:    listener,
			Pos:         NamedPosition("block-1"),
		},
		Precedence: 2,
	}
	padding := &BorderOrPadding{
		Unresolved: Unresolved{Length: minoptmax.Fixed(4), Listener: listener},
		Kind:       EdgePadding,
	}

	var elems []LengthElement = []LengthElement{space, padding}
	for _, e := range elems {
		assert.True(t, e.IsUnresolved())
	}
	assert.Same(t, &space.Unresolved, space.Base())

	eff := minoptmax.Fixed(2)
	space.Notify(NoBreak, &eff)
	padding.Notify(AfterBreak, nil)

	require.Len(t, got, 2)
	assert.Equal(t, KindSpace, got[0].Kind)
	assert.Equal(t, After, got[0].Side)
	assert.Equal(t, NoBreak, got[0].Outcome)
	assert.Equal(t, &eff, got[0].Effective)
	assert.Equal(t, NamedPosition("block-1"), got[0].Pos)

	assert.Equal(t, KindPadding, got[1].Kind)
	assert.Nil(t, got[1].Effective, "eliminated marker reports no length")

	assert.Contains(t, space.String(), "precedence=2")
	assert.Contains(t, space.String(), "cond")
	assert.Contains(t, padding.String(), "padding[")
}

func TestNotifyWithoutListener(t *testing.T) {
	border := &BorderOrPadding{Kind: EdgeBorder}
	assert.NotPanics(t, func() { border.Notify(BeforeBreak, nil) })
}

func TestBreak(t *testing.T) {
	b := &Break{PenaltyValue: -Infinite, BreakClass: ClassColumn}
	assert.True(t, b.IsForced())
	assert.True(t, b.IsUnresolved())
	assert.Contains(t, b.String(), "class=column")

	assert.False(t, (&Break{PenaltyValue: 0}).IsForced())
}

func TestParseBreakClass(t *testing.T) {
	assert.Equal(t, ClassPage, ParseBreakClass("page"))
	assert.Equal(t, ClassOddPage, ParseBreakClass("odd-page"))
	assert.Equal(t, ClassAuto, ParseBreakClass(""))
	assert.Equal(t, ClassAuto, ParseBreakClass("sideways"))
	assert.Equal(t, "BreakClass(42)", BreakClass(42).String())
}

func TestListUtilities(t *testing.T) {
	list := []Element{
		&Box{Width: 10},
		&Glue{Width: 3, Stretch: 1},
		&Box{Width: 7},
		NewPenalty(2, 0, false, ClassAuto, nil, false),
		&Box{Width: 5},
		NewPenalty(0, Infinite, false, ClassAuto, nil, false),
		&Box{Width: 1},
	}

	t.Run("RemoveLegalBreaks", func(t *testing.T) {
		out := RemoveLegalBreaks(list)
		require.Len(t, out, len(list)+1, "glue after a box gets a shield")
		shield, ok := out[1].(*Penalty)
		require.True(t, ok)
		assert.True(t, shield.IsForbidden())
		assert.IsType(t, &Glue{}, out[2])
		converted, ok := out[4].(*Penalty)
		require.True(t, ok)
		assert.True(t, converted.IsForbidden())
		assert.Equal(t, int64(2), converted.Width)
		for i, el := range out {
			if p, ok := el.(*Penalty); ok {
				assert.True(t, p.IsForbidden(), "penalty %d still allows a break", i)
			}
		}
	})

	t.Run("RemoveLegalBreaks keeps forced breaks", func(t *testing.T) {
		forced := NewPenalty(0, -Infinite, false, ClassPage, nil, false)
		out := RemoveLegalBreaks([]Element{&Box{Width: 1}, forced})
		require.Len(t, out, 2)
		assert.Same(t, forced, out[1])
	})
}
