// Command sampledata regenerates the bundled sample dataset. The
// output is deterministic for a given seed so the file can be checked
// in and reproduced.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/ingest"
)

func main() {
	out := flag.String("out", "", "output path (defaults to data/sample/sample_data.csv)")
	rows := flag.Int("rows", 10000, "number of transaction rows to generate")
	customers := flag.Int("customers", 500, "number of distinct customers")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *out != "" {
		paths.SampleCSV = *out
	} else if err := paths.EnsureDirectories(); err != nil {
		slog.Error("failed to create data directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sample := ingest.GenerateSample(ingest.SampleConfig{
		Transactions: *rows,
		Customers:    *customers,
		Seed:         *seed,
		StartYear:    2010,
		EndYear:      2011,
	})

	records := make([][]string, len(sample))
	for i, tx := range sample {
		records[i] = ingest.CSVRecord(tx)
	}

	writer := exporter.NewCSVWriter(nil)
	if err := writer.WriteSimpleCSV(paths.SampleCSV, ingest.CleanedHeaders, records); err != nil {
		slog.Error("failed to write sample dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("wrote %d rows to %s\n", len(sample), paths.SampleCSV)
}
