// File: internal/compare/compare.go
package compare

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// PlaceholderGeneratedID replaces section IDs that were generated for a run.
const PlaceholderGeneratedID = "__GENERATED_ID__"

// Options controls what counts as a difference.
type Options struct {
	// IgnorePositions drops the position labels of resolved atoms.
	IgnorePositions bool
	// IgnoreGroups drops the resolver group counts.
	IgnoreGroups bool
}

// Result is the outcome of comparing two reports.
type Result struct {
	AreEquivalent bool
	// Diff is a human readable description of every difference, empty when equivalent.
	Diff string
	// Changed lists the sections whose results differ, by ID.
	Changed []string
	// Missing lists sections present in only one report.
	Missing []string
}

// Service compares resolution reports. Run metadata (IDs, timestamps,
// durations) never counts as a difference.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	return &Service{logger: logger.Named("compare")}
}

// CompareFiles loads two JSON reports and compares them.
func (s *Service) CompareFiles(pathA, pathB string, opts Options) (*Result, error) {
	a, err := LoadReport(pathA)
	if err != nil {
		return nil, err
	}
	b, err := LoadReport(pathB)
	if err != nil {
		return nil, err
	}
	return s.Compare(a, b, opts), nil
}

// Compare matches sections by ID and diffs each pair. Sections with generated
// IDs are matched by their position among the generated ones.
func (s *Service) Compare(a, b *schemas.Report, opts Options) *Result {
	left, right := keyed(a), keyed(b)
	cmpOptions := buildCmpOptions(opts)

	res := &Result{}
	var diffs []string
	for _, key := range unionKeys(left, right) {
		secA, okA := left[key]
		secB, okB := right[key]
		if !okA || !okB {
			res.Missing = append(res.Missing, key)
			side := "second"
			if !okA {
				side = "first"
			}
			diffs = append(diffs, fmt.Sprintf("section %s: missing from the %s report", key, side))
			continue
		}
		if d := cmp.Diff(secA, secB, cmpOptions...); d != "" {
			res.Changed = append(res.Changed, key)
			diffs = append(diffs, fmt.Sprintf("section %s (-first +second):\n%s", key, d))
		}
	}

	res.AreEquivalent = len(diffs) == 0
	res.Diff = strings.Join(diffs, "\n")
	s.logger.Debug("Compared reports",
		zap.Int("sections", len(left)),
		zap.Int("changed", len(res.Changed)),
		zap.Int("missing", len(res.Missing)))
	return res
}

// LoadReport reads a JSON report written by the json reporter.
func LoadReport(path string) (*schemas.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	var report schemas.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &report, nil
}

func buildCmpOptions(opts Options) []cmp.Option {
	ignored := []string{"RunID", "SectionID", "Duration", "ResolvedAt"}
	if opts.IgnoreGroups {
		ignored = append(ignored, "Groups")
	}
	options := []cmp.Option{
		cmpopts.IgnoreFields(schemas.SectionResult{}, ignored...),
		cmpopts.EquateEmpty(),
	}
	if opts.IgnorePositions {
		options = append(options, cmpopts.IgnoreFields(schemas.AtomSpec{}, "Position"))
	}
	return options
}

// keyed indexes sections by ID; generated IDs become numbered placeholders.
func keyed(r *schemas.Report) map[string]schemas.SectionResult {
	out := make(map[string]schemas.SectionResult, len(r.Sections))
	generated := 0
	for _, sec := range r.Sections {
		key := sec.SectionID
		if isGeneratedID(key) {
			key = fmt.Sprintf("%s_%d", PlaceholderGeneratedID, generated)
			generated++
		}
		out[key] = sec
	}
	return out
}

func isGeneratedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func unionKeys(a, b map[string]schemas.SectionResult) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
