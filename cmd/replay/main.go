// Command replay runs recorded weather readings through the risk evaluation
// cycle offline and writes the resulting alert records as a JSON fixture. The
// weather API is never called; each CSV row supplies its own reading.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -csv testdata/readings.csv \
//	  -out data/mock/pest_alerts.json
//
// The CSV needs a header row with crop, city, temperature and humidity columns.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
	"github.com/couchcryptid/pest-risk/internal/pipeline"
)

var defaultAt = time.Date(2024, time.March, 12, 12, 0, 0, 0, time.UTC)

// row is one recorded reading from the CSV.
type row struct {
	line    int
	crop    string
	city    string
	reading domain.Reading
}

// replayProvider serves the reading of the row being replayed.
type replayProvider struct {
	current domain.Reading
}

func (p *replayProvider) Current(_ context.Context, _ string) (domain.Reading, error) {
	return p.current, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV of crop,city,temperature,humidity rows")
	out := flag.String("out", "", "output path for the alert record JSON fixture")
	catalogPath := flag.String("catalog", "", "optional YAML crop catalog")
	at := flag.String("at", defaultAt.Format(time.RFC3339), "fixed timestamp stamped on every record")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	stamp, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return fmt.Errorf("invalid -at: %w", err)
	}
	// A fixed clock keeps fixtures reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(stamp))
	defer domain.SetClock(nil)

	catalog, table := domain.DefaultCatalog(), domain.DefaultRecommendations()
	if *catalogPath != "" {
		if catalog, table, err = domain.LoadCatalogFile(*catalogPath); err != nil {
			return err
		}
	}

	rows, err := readRows(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}

	records, skipped := replay(catalog, table, rows)
	log.Printf("replayed %d rows: %d records, %d skipped", len(rows), len(records), skipped)

	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(records)
	return nil
}

// replay evaluates every row in order. Rows failing validation are logged and
// skipped.
func replay(catalog *domain.Catalog, table domain.RecommendationTable, rows []row) ([]domain.AlertRecord, int) {
	provider := &replayProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ev := pipeline.NewEvaluator(catalog, table, provider, logger, observability.NewMetricsForTesting())

	var report domain.Report
	skipped := 0
	for _, r := range rows {
		provider.current = r.reading
		if _, err := ev.Evaluate(context.Background(), &report, r.crop, r.city); err != nil {
			log.Printf("line %d: skipped: %v", r.line, err)
			skipped++
		}
	}
	return report.Records(), skipped
}

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return parseRows(f)
}

func parseRows(r io.Reader) ([]row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"crop", "city", "temperature", "humidity"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		temp, err := strconv.ParseFloat(get(rec, colIdx, "temperature"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid temperature: %w", line, err)
		}
		hum, err := strconv.ParseFloat(get(rec, colIdx, "humidity"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid humidity: %w", line, err)
		}
		rows = append(rows, row{
			line:    line,
			crop:    get(rec, colIdx, "crop"),
			city:    get(rec, colIdx, "city"),
			reading: domain.Reading{Temperature: temp, Humidity: hum},
		})
	}
	return rows, nil
}

func get(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.AlertRecord) {
	byTier := map[string]int{}
	byCrop := map[string]int{}
	for _, r := range records {
		byTier[r.Tier().Label()]++
		byCrop[r.Crop]++
	}

	fmt.Println("\n=== Risk tiers ===")
	for _, label := range []string{domain.TierHigh.Label(), domain.TierMedium.Label(), domain.TierLow.Label(), domain.TierUnknown.Label()} {
		fmt.Printf("  %-10s %d\n", label, byTier[label])
	}

	crops := make([]string, 0, len(byCrop))
	for c := range byCrop {
		crops = append(crops, c)
	}
	sort.Strings(crops)
	fmt.Println("\n=== Crops ===")
	for _, c := range crops {
		fmt.Printf("  %-12s %d\n", c, byCrop[c])
	}
}
