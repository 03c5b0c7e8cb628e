// Command genmock converts a daily rainfall CSV into the year-keyed JSON
// fixture and can seed the SQLite and Kafka sources with the same data.
//
// The CSV needs a header row with "date" and "rainfall_mm" columns. Dates are
// YYYY-MM-DD; rows are grouped by calendar year.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/rainfall_daily.csv \
//	  -out data/rainfall_data.json \
//	  -sqlite rainfall.db \
//	  -kafka-brokers localhost:9092
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/sqlite"
	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	"github.com/couchcryptid/rainfall-dry-periods/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "daily rainfall CSV with date and rainfall_mm columns")
	out := flag.String("out", "", "output path for the year-keyed JSON fixture")
	sqlitePath := flag.String("sqlite", "", "optional SQLite database to import into")
	brokers := flag.String("kafka-brokers", "", "optional comma-separated Kafka brokers to publish to")
	topic := flag.String("kafka-topic", "rainfall-measurements", "Kafka topic to publish to")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return errors.New("missing required flags: -csv, -out")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d measurements in %d groups", records.Len(), len(records))

	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *sqlitePath != "" {
		if err := importSQLite(ctx, *sqlitePath, records); err != nil {
			return fmt.Errorf("importing into sqlite: %w", err)
		}
		log.Printf("imported into sqlite: %s", *sqlitePath)
	}

	if *brokers != "" {
		cfg := &config.Config{KafkaBrokers: sharedcfg.ParseBrokers(*brokers), KafkaTopic: *topic}
		w := kafka.NewWriter(cfg, "genmock", observability.NewLogger("info", "text"))
		defer w.Close()
		if err := w.Publish(ctx, records); err != nil {
			return fmt.Errorf("publishing to kafka: %w", err)
		}
		log.Printf("published to kafka topic %s", *topic)
	}

	printStats(records)
	return nil
}

// readCSV parses the CSV into a RecordSet grouped by year.
func readCSV(r io.Reader) (domain.RecordSet, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"date", "rainfall_mm"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	ms := make([]domain.Measurement, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		d, err := domain.ParseDate(get(row, colIdx, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		mm, err := strconv.ParseFloat(get(row, colIdx, "rainfall_mm"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rainfall_mm: %w", line, err)
		}
		ms = append(ms, domain.Measurement{Date: d, RainfallMM: mm})
	}
	return domain.GroupByYear(ms), nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, records domain.RecordSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jsonfile.Encode(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func importSQLite(ctx context.Context, path string, records domain.RecordSet) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Import(ctx, records)
}

func printStats(records domain.RecordSet) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d measurements\n", records.Len())
	for _, key := range records.Keys() {
		var total float64
		var atLimited int
		for _, m := range records[key] {
			total += m.RainfallMM
			if m.RainfallMM >= 2.0 {
				atLimited++
			}
		}
		fmt.Printf("  %s: %d days, %.1f mm, %d days >= 2mm\n", key, len(records[key]), total, atLimited)
	}
}
