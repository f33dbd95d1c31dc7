package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// TextReporter writes a human readable table per section as results arrive.
// It is thread safe.
type TextReporter struct {
	writer io.WriteCloser
	mu     sync.Mutex
}

func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

func (r *TextReporter) Write(res *schemas.SectionResult) error {
	if res == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	breaks := make(map[int]bool, len(res.Breaks))
	for _, b := range res.Breaks {
		breaks[b] = true
	}
	candidates := make(map[int]bool, len(res.BreakCandidates))
	for _, c := range res.BreakCandidates {
		candidates[c] = !breaks[c]
	}

	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "section %s (%d groups, %d breaks, %s)\n", res.SectionID, res.Groups, len(res.Breaks), res.Duration)
	fmt.Fprintln(tw, "  atoms:")
	for i, a := range res.Resolved {
		fmt.Fprintf(tw, "    %d\t%s\t%s\t%s\n", i, a.Type, describeAtom(a), atomFlags(a, breaks[i], candidates[i]))
	}
	if len(res.Notifications) > 0 {
		fmt.Fprintln(tw, "  notifications:")
		for _, n := range res.Notifications {
			fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\t%s\n", n.Element, n.Kind, n.Side, n.Outcome, describeLength(n.Effective))
		}
	}
	fmt.Fprintln(tw)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write section %q: %w", res.SectionID, err)
	}
	return nil
}

func (r *TextReporter) Close() error {
	return r.writer.Close()
}

func describeAtom(a schemas.AtomSpec) string {
	switch a.Type {
	case schemas.ElementGlue:
		return fmt.Sprintf("w=%d +%d -%d", a.Width, a.Stretch, a.Shrink)
	case schemas.ElementPenalty:
		s := fmt.Sprintf("w=%d p=%d", a.Width, a.Value)
		if a.BreakClass != "" {
			s += " class=" + a.BreakClass
		}
		return s
	}
	return fmt.Sprintf("w=%d", a.Width)
}

func atomFlags(a schemas.AtomSpec, isBreak, isCandidate bool) string {
	var flags []string
	if isBreak {
		flags = append(flags, "break")
	}
	if isCandidate {
		flags = append(flags, "candidate")
	}
	if a.Flagged {
		flags = append(flags, "flagged")
	}
	if a.Auxiliary {
		flags = append(flags, "aux")
	}
	if a.Position != "" {
		flags = append(flags, a.Position)
	}
	return strings.Join(flags, " ")
}

func describeLength(l *schemas.Length) string {
	if l == nil {
		return "eliminated"
	}
	return fmt.Sprintf("%d/%d/%d", l.Min, l.Opt, l.Max)
}
