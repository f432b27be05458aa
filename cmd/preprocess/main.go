// Command preprocess runs the batch pipeline once: ingest the raw
// workbook (or the bundled sample), clean it and write the processed
// datasets. The dashboard serves whatever this command produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"retailpulse/internal/cleaning"
	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/pipeline"
)

func main() {
	in := flag.String("in", "", "raw workbook path (defaults to data/raw/online_retail_II.xlsx)")
	out := flag.String("out", "", "output directory for the processed CSVs (defaults to data/processed)")
	sample := flag.Bool("sample", false, "ignore the workbook and process the bundled sample dataset")
	percentile := flag.Float64("outlier-percentile", 0, "override the outlier cap percentile (0 uses the configured value)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *in != "" {
		paths.RawWorkbook = *in
	}
	if *sample || cfg.Data.UseSample {
		paths.RawWorkbook = ""
	}
	if *out != "" {
		paths.ProcessedDir = *out
		paths.CleanedCSV = filepath.Join(*out, config.CleanedCSVName)
		paths.CustomerRFMCSV = filepath.Join(*out, config.CustomerRFMCSVName)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create data directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	outlierPercentile := cfg.Data.OutlierPercentile
	if *percentile > 0 {
		outlierPercentile = *percentile
	}

	steps := []pipeline.Step{
		pipeline.NewIngestStep(*paths, logger),
		pipeline.NewCleanStep(outlierPercentile, logger),
		pipeline.NewExportStep(*paths, exporter.NewCSVWriter(logger), logger),
	}
	runner := pipeline.NewRunner(steps, pipeline.LogNotifier(logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.PipelineTimeout)
	defer cancel()

	state, err := runner.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printCleanReport(state)
	fmt.Printf("cleaned dataset: %s\n", paths.CleanedCSV)
	fmt.Printf("customer rfm:    %s\n", paths.CustomerRFMCSV)
}

func printCleanReport(state *pipeline.RunState) {
	value, ok := state.Get(pipeline.ContextKeyCleanStats)
	if !ok {
		return
	}
	stats, ok := value.(*cleaning.Stats)
	if !ok {
		return
	}

	fmt.Println("cleaning report:")
	fmt.Printf("  rows in:           %d\n", stats.InitialRows)
	fmt.Printf("  cancellations:     %d\n", stats.Cancellations)
	fmt.Printf("  missing customer:  %d\n", stats.MissingCustomer)
	fmt.Printf("  invalid values:    %d\n", stats.InvalidValues)
	fmt.Printf("  outliers:          %d\n", stats.Outliers)
	fmt.Printf("  rows out:          %d (%.1f%% retained)\n", stats.RemainingRows, stats.RetentionRate()*100)
}
