package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"retailpulse/internal/cleaning"
	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/ingest"
	"retailpulse/internal/metrics"
	"retailpulse/pkg/contracts/domain"
)

// Step identifiers.
const (
	StepIDIngest = "ingest"
	StepIDClean  = "clean"
	StepIDExport = "export"
)

// Step names shown in progress events.
const (
	StepNameIngest = "Data Ingestion"
	StepNameClean  = "Data Cleaning"
	StepNameExport = "Metric Export"
)

// Context keys for passing data between steps.
const (
	ContextKeyRaw        = "raw_transactions"
	ContextKeyCleaned    = "cleaned_transactions"
	ContextKeyCleanStats = "clean_stats"
	ContextKeyRFM        = "customer_rfm"
	ContextKeySource     = "data_source"
)

// Step is one unit of pipeline work. Validate runs before Execute and
// must not mutate the state.
type Step interface {
	ID() string
	Name() string
	Validate(state *RunState) error
	Execute(ctx context.Context, state *RunState) error
}

// IngestStep loads raw transactions: the Excel workbook when present,
// otherwise the bundled sample CSV.
type IngestStep struct {
	paths  config.Paths
	logger *slog.Logger
}

// NewIngestStep creates the ingestion step.
func NewIngestStep(paths config.Paths, logger *slog.Logger) *IngestStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestStep{paths: paths, logger: logger}
}

func (s *IngestStep) ID() string   { return StepIDIngest }
func (s *IngestStep) Name() string { return StepNameIngest }

// Validate requires at least one input source on disk.
func (s *IngestStep) Validate(_ *RunState) error {
	if !config.FileExists(s.paths.RawWorkbook) && !config.FileExists(s.paths.SampleCSV) {
		return fmt.Errorf("no input data: neither %s nor %s exists", s.paths.RawWorkbook, s.paths.SampleCSV)
	}
	return nil
}

// Execute loads the raw dataset and stores it in the run context.
func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if config.FileExists(s.paths.RawWorkbook) {
		transactions, stats, err := ingest.LoadWorkbook(s.paths.RawWorkbook, s.logger)
		if err != nil {
			return fmt.Errorf("workbook ingest: %w", err)
		}
		state.Set(ContextKeyRaw, transactions)
		state.Set(ContextKeySource, "workbook")
		s.logger.Info("ingested raw workbook",
			slog.Int("rows", stats.TotalRows),
			slog.Int("malformed", stats.MalformedRows))
		return nil
	}

	s.logger.Warn("raw workbook missing, falling back to sample dataset",
		slog.String("workbook", s.paths.RawWorkbook),
		slog.String("sample", s.paths.SampleCSV))

	transactions, err := ingest.LoadCSV(s.paths.SampleCSV)
	if err != nil {
		return fmt.Errorf("sample ingest: %w", err)
	}
	state.Set(ContextKeyRaw, transactions)
	state.Set(ContextKeySource, "sample")
	return nil
}

// CleanStep filters the raw dataset down to analyzable rows.
type CleanStep struct {
	outlierPercentile float64
	logger            *slog.Logger
}

// NewCleanStep creates the cleaning step.
func NewCleanStep(outlierPercentile float64, logger *slog.Logger) *CleanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanStep{outlierPercentile: outlierPercentile, logger: logger}
}

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return StepNameClean }

// Validate requires the ingest step to have produced raw rows.
func (s *CleanStep) Validate(state *RunState) error {
	if _, ok := state.Get(ContextKeyRaw); !ok {
		return fmt.Errorf("no raw transactions in run context, ingest must run first")
	}
	return nil
}

// Execute cleans the raw dataset and stores rows plus stats.
func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, _ := state.Get(ContextKeyRaw)
	transactions, ok := raw.([]domain.Transaction)
	if !ok {
		return fmt.Errorf("run context holds unexpected raw dataset type %T", raw)
	}

	cleaned, stats := cleaning.NewCleaner(s.logger, s.outlierPercentile).Clean(transactions)
	if len(cleaned) == 0 {
		return fmt.Errorf("cleaning removed every row (%d in)", stats.InitialRows)
	}

	state.Set(ContextKeyCleaned, cleaned)
	state.Set(ContextKeyCleanStats, stats)
	return nil
}

// ExportStep scores customers and persists the processed datasets.
type ExportStep struct {
	paths  config.Paths
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewExportStep creates the export step.
func NewExportStep(paths config.Paths, writer *exporter.CSVWriter, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	if writer == nil {
		writer = exporter.NewCSVWriter(logger)
	}
	return &ExportStep{paths: paths, writer: writer, logger: logger}
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return StepNameExport }

// Validate requires cleaned rows in the run context.
func (s *ExportStep) Validate(state *RunState) error {
	if _, ok := state.Get(ContextKeyCleaned); !ok {
		return fmt.Errorf("no cleaned transactions in run context, clean must run first")
	}
	return nil
}

// Execute writes cleaned_transactions.csv and customer_rfm.csv.
func (s *ExportStep) Execute(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, _ := state.Get(ContextKeyCleaned)
	cleaned, ok := value.([]domain.Transaction)
	if !ok {
		return fmt.Errorf("run context holds unexpected cleaned dataset type %T", value)
	}

	// The cleaned dataset is the largest artifact; stream it row by row
	// instead of materializing a second copy of every record.
	stream, err := s.writer.CreateStreamWriter(s.paths.CleanedCSV, ingest.CleanedHeaders)
	if err != nil {
		return fmt.Errorf("write cleaned dataset: %w", err)
	}
	for _, tx := range cleaned {
		if err := stream.WriteRecord(ingest.CSVRecord(tx)); err != nil {
			stream.Close()
			return fmt.Errorf("write cleaned dataset: %w", err)
		}
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("write cleaned dataset: %w", err)
	}

	customers, err := metrics.ComputeRFM(cleaned)
	if err != nil {
		return fmt.Errorf("rfm scoring: %w", err)
	}
	if err := s.writer.WriteSimpleCSV(s.paths.CustomerRFMCSV, RFMHeaders, rfmRecords(customers)); err != nil {
		return fmt.Errorf("write rfm dataset: %w", err)
	}

	state.Set(ContextKeyRFM, customers)
	s.logger.Info("exported processed datasets",
		slog.String("cleaned", s.paths.CleanedCSV),
		slog.String("rfm", s.paths.CustomerRFMCSV),
		slog.Int("rows", len(cleaned)),
		slog.Int("customers", len(customers)))
	return nil
}
