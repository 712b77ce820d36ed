package reportfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

// JSONSink appends records to the cumulative JSON array report.
// It implements pipeline.Sink.
type JSONSink struct {
	path string
}

// NewJSONSink creates a sink writing <dir>/pest_report.json.
func NewJSONSink(dir string) *JSONSink {
	return &JSONSink{path: filepath.Join(dir, JSONFile)}
}

func (s *JSONSink) Name() string { return "json_report" }

func (s *JSONSink) Path() string { return s.path }

// Write reads the existing array, appends records and replaces the file via a
// temp file and rename so a failed write never truncates history.
func (s *JSONSink) Write(_ context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	existing, err := ReadJSON(s.path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(append(existing, records...), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pest_report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace json report: %w", err)
	}
	return nil
}

// TextSink appends the latest record, rendered by its formatter, to a text
// report. It implements pipeline.Sink.
type TextSink struct {
	name   string
	path   string
	format func(domain.AlertRecord) string
}

// NewFullTextSink creates the detailed text report sink at <dir>/full_report.txt.
func NewFullTextSink(dir string) *TextSink {
	return &TextSink{name: "full_report", path: filepath.Join(dir, FullFile), format: FormatFull}
}

// NewSummaryTextSink creates the summary sink at <dir>/summary_report.txt.
func NewSummaryTextSink(dir string) *TextSink {
	return &TextSink{name: "summary_report", path: filepath.Join(dir, SummaryFile), format: FormatSummary}
}

func (s *TextSink) Name() string { return s.name }

func (s *TextSink) Path() string { return s.path }

func (s *TextSink) Write(_ context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ensureDir(s.path); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	if _, err := f.WriteString(s.format(records[len(records)-1])); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", s.name, err)
	}
	return f.Close()
}
