package schemas

import "time"

// -- Document Schemas --

// ElementType names the kind of an entry in a section's element list.
type ElementType string

const (
	ElementBox     ElementType = "box"
	ElementGlue    ElementType = "glue"
	ElementPenalty ElementType = "penalty"
	ElementSpace   ElementType = "space"
	ElementBorder  ElementType = "border"
	ElementPadding ElementType = "padding"
	ElementBreak   ElementType = "break"
)

// Side values for ElementSpec.Side.
const (
	SideBefore = "before"
	SideAfter  = "after"
)

// Document is a set of independently resolved sections.
type Document struct {
	Sections []Section `json:"sections"`
}

// Section is one element list. Breaks optionally lists the indexes, in the
// resolved list, of the break penalties a breaker chose; they drive the
// notification replay.
type Section struct {
	ID       string        `json:"id"`
	Elements []ElementSpec `json:"elements"`
	Breaks   []int         `json:"breaks,omitempty"`
}

// ElementSpec describes a single element. Which fields apply depends on Type:
// boxes use Width, glues Width/Stretch/Shrink, penalties Width/Value/Flagged,
// markers Min/Opt/Max and their conditionality, breaks Value/BreakClass and
// the pending marks.
type ElementSpec struct {
	Type ElementType `json:"type"`
	// Name identifies a marker in notification records.
	Name string `json:"name,omitempty"`

	Width   int64 `json:"width,omitempty"`
	Stretch int64 `json:"stretch,omitempty"`
	Shrink  int64 `json:"shrink,omitempty"`
	Value   int64 `json:"value,omitempty"`
	Flagged bool  `json:"flagged,omitempty"`

	Min         int64  `json:"min,omitempty"`
	Opt         int64  `json:"opt,omitempty"`
	Max         int64  `json:"max,omitempty"`
	Conditional bool   `json:"conditional,omitempty"`
	Precedence  int    `json:"precedence,omitempty"`
	Forcing     bool   `json:"forcing,omitempty"`
	Side        string `json:"side,omitempty"`
	First       bool   `json:"first,omitempty"`
	Last        bool   `json:"last,omitempty"`

	BreakClass    string        `json:"break_class,omitempty"`
	PendingBefore []ElementSpec `json:"pending_before,omitempty"`
	PendingAfter  []ElementSpec `json:"pending_after,omitempty"`
}

// -- Result Schemas --

// Length is a min/opt/max triple as reported in results.
type Length struct {
	Min int64 `json:"min"`
	Opt int64 `json:"opt"`
	Max int64 `json:"max"`
}

// AtomSpec is one canonical element of a resolved list.
type AtomSpec struct {
	Type       ElementType `json:"type"`
	Width      int64       `json:"width"`
	Stretch    int64       `json:"stretch,omitempty"`
	Shrink     int64       `json:"shrink,omitempty"`
	Value      int64       `json:"value,omitempty"`
	Flagged    bool        `json:"flagged,omitempty"`
	BreakClass string      `json:"break_class,omitempty"`
	Auxiliary  bool        `json:"auxiliary,omitempty"`
	Position   string      `json:"position,omitempty"`
}

// NotificationRecord is what a marker's producer was told during replay.
// A nil Effective means the marker was eliminated.
type NotificationRecord struct {
	Element   string  `json:"element"`
	Kind      string  `json:"kind"`
	Side      string  `json:"side"`
	Outcome   string  `json:"outcome"`
	Effective *Length `json:"effective"`
}

// SectionResult is the outcome of resolving one section.
type SectionResult struct {
	RunID         string               `json:"run_id"`
	SectionID     string               `json:"section_id"`
	Resolved      []AtomSpec           `json:"resolved"`
	Notifications []NotificationRecord `json:"notifications"`
	Groups        int                  `json:"groups"`
	Breaks        []int                `json:"breaks,omitempty"`

	// BreakCandidates indexes the resolver breaks at which breaking is legal.
	BreakCandidates []int `json:"break_candidates,omitempty"`

	Duration   time.Duration `json:"duration_ns"`
	ResolvedAt time.Time     `json:"resolved_at"`
}

// Report wraps the results of one run.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Sections    []SectionResult `json:"sections"`
}
