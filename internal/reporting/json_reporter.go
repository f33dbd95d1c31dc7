package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// JSONReporter collects section results and writes a single schemas.Report on
// Close. It is thread safe.
type JSONReporter struct {
	writer io.WriteCloser
	mu     sync.Mutex
	report schemas.Report
	now    func() time.Time
}

// NewJSONReporter creates a reporter writing an indented JSON report.
func NewJSONReporter(writer io.WriteCloser, runID string) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		report: schemas.Report{RunID: runID, Sections: []schemas.SectionResult{}},
		now:    time.Now,
	}
}

func (r *JSONReporter) Write(result *schemas.SectionResult) error {
	if result == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Sections = append(r.report.Sections, *result)
	return nil
}

func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.GeneratedAt = r.now().UTC()
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	encodeErr := enc.Encode(r.report)
	closeErr := r.writer.Close()
	if encodeErr != nil {
		return fmt.Errorf("failed to encode report: %w", encodeErr)
	}
	return closeErr
}

// JSONLinesReporter writes each section result as one JSON line as soon as it
// arrives. It is thread safe.
type JSONLinesReporter struct {
	writer io.WriteCloser
	mu     sync.Mutex
	enc    *json.Encoder
}

func NewJSONLinesReporter(writer io.WriteCloser) *JSONLinesReporter {
	return &JSONLinesReporter{writer: writer, enc: json.NewEncoder(writer)}
}

func (r *JSONLinesReporter) Write(result *schemas.SectionResult) error {
	if result == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode section %q: %w", result.SectionID, err)
	}
	return nil
}

func (r *JSONLinesReporter) Close() error {
	return r.writer.Close()
}
