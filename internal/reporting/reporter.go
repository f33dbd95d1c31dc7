// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// Output formats.
const (
	FormatJSON = "json"
	// FormatJSONLines writes one section result per line as it arrives.
	FormatJSONLines = "jsonl"
	FormatText      = "text"
)

// Reporter defines the interface for writing resolution results to an output.
type Reporter interface {
	// Write adds a single section result.
	Write(result *schemas.SectionResult) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a new reporter based on the specified format and output path.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath, runID string) (Reporter, error) {
	if !supported(format) {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if outputPath == "" || outputPath == "stdout" {
		return NewForWriter(format, os.Stdout, runID)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	return NewWithWriter(format, f, runID)
}

// NewForWriter creates a reporter on a stream it does not own; closing the
// reporter leaves w open.
func NewForWriter(format string, w io.Writer, runID string) (Reporter, error) {
	return NewWithWriter(format, &nopWriteCloser{w}, runID)
}

// NewWithWriter creates a reporter that takes ownership of writer.
func NewWithWriter(format string, writer io.WriteCloser, runID string) (Reporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(writer, runID), nil
	case FormatJSONLines:
		return NewJSONLinesReporter(writer), nil
	case FormatText:
		return NewTextReporter(writer), nil
	}
	return nil, fmt.Errorf("unsupported output format: %s", format)
}

func supported(format string) bool {
	switch format {
	case FormatJSON, FormatJSONLines, FormatText:
		return true
	}
	return false
}
