package layout

import "github.com/xkilldash9x/fospace/internal/minoptmax"

// Outcome is what the breaking decision meant for a resolved marker.
type Outcome int

const (
	// BeforeBreak: the marker sits directly before the chosen break.
	BeforeBreak Outcome = iota
	// AfterBreak: the marker sits directly after the chosen break.
	AfterBreak
	// NoBreak: no break was taken at the marker's run.
	NoBreak
)

func (o Outcome) String() string {
	switch o {
	case BeforeBreak:
		return "before-break"
	case AfterBreak:
		return "after-break"
	default:
		return "no-break"
	}
}

// Kind identifies the trait a notification is about.
type Kind int

const (
	KindSpace Kind = iota
	KindBorder
	KindPadding
)

func (k Kind) String() string {
	switch k {
	case KindBorder:
		return "border"
	case KindPadding:
		return "padding"
	default:
		return "space"
	}
}

// Notification is delivered once per marker during replay.
type Notification struct {
	Outcome Outcome
	Kind    Kind
	Side    RelSide
	// Effective is nil when the marker was eliminated.
	Effective *minoptmax.MinOptMax
	Pos       Position
}

// ConditionalElementListener is implemented by producers that need to commit
// a trait (a border width, a space) once breaking is final.
type ConditionalElementListener interface {
	Commit(n Notification)
}

// ListenerFunc adapts a function to ConditionalElementListener.
type ListenerFunc func(n Notification)

func (f ListenerFunc) Commit(n Notification) { f(n) }

// NamedPosition is a Position identified by a producer-chosen name.
type NamedPosition string

func (p NamedPosition) String() string { return string(p) }
