// Package reportfile writes alert records to the report files under the
// report directory: a cumulative JSON array and two append-only text reports.
package reportfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

const (
	JSONFile    = "pest_report.json"
	FullFile    = "full_report.txt"
	SummaryFile = "summary_report.txt"
)

// ErrNoReport is returned when a report file has not been written yet.
var ErrNoReport = errors.New("no report generated yet")

// ReadJSON returns every record persisted at path in write order. A missing
// file holds no records.
func ReadJSON(path string) ([]domain.AlertRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read json report: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var records []domain.AlertRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json report %s: %w", path, err)
	}
	return records, nil
}

// ReadText returns the contents of a text report.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoReport
	}
	if err != nil {
		return "", fmt.Errorf("read text report: %w", err)
	}
	return string(data), nil
}

// FormatFull renders the detailed block for one record.
func FormatFull(rec domain.AlertRecord) string {
	var b strings.Builder
	b.WriteString("=== Pest Risk Report ===\n")
	fmt.Fprintf(&b, "%-16s %s\n", "Date:", rec.Date.Format(time.RFC3339))
	fmt.Fprintf(&b, "%-16s %s\n", "Crop:", rec.Crop)
	fmt.Fprintf(&b, "%-16s %s\n", "City:", rec.City)
	fmt.Fprintf(&b, "%-16s %.2f°C\n", "Temperature:", rec.Temperature)
	fmt.Fprintf(&b, "%-16s %g%%\n", "Humidity:", rec.Humidity)
	fmt.Fprintf(&b, "%-16s %s\n", "Risk level:", rec.Tier().Label())
	fmt.Fprintf(&b, "%-16s %s\n", "Recommendation:", rec.Recommendation)
	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")
	return b.String()
}

// FormatSummary renders the one-line summary for a record. The city is left
// out.
func FormatSummary(rec domain.AlertRecord) string {
	return fmt.Sprintf("Crop: %s | Risk: %s | Recommendation: %s\n", rec.Crop, rec.Tier().Label(), rec.Recommendation)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return nil
}
