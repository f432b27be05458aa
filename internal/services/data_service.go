// Package services holds the application services between the HTTP
// transport and the analytics packages.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"retailpulse/internal/config"
	"retailpulse/internal/ingest"
	"retailpulse/pkg/contracts/domain"
)

// Dataset sources reported to the dashboard.
const (
	SourceProcessed = "processed"
	SourceSample    = "sample"
)

// FilterOptions describes the filterable dimensions of the loaded
// dataset, served on /api/filters.
type FilterOptions struct {
	DateMin   string   `json:"date_min"`
	DateMax   string   `json:"date_max"`
	Countries []string `json:"countries"`
	Source    string   `json:"source"`
	Rows      int      `json:"rows"`
}

// DataService owns the in-memory transaction dataset. It loads the
// processed CSV when present and falls back to the bundled sample;
// Reload refreshes it after a pipeline run.
type DataService struct {
	paths  *config.Paths
	logger *slog.Logger

	mu           sync.RWMutex
	transactions []domain.Transaction
	source       string
	loadedAt     time.Time
}

// NewDataService creates the service. Call Load before serving.
func NewDataService(paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		paths:  paths,
		logger: logger.With(slog.String("component", "data_service")),
	}
}

// Load reads the dataset from disk: processed first, sample second.
// Returns ErrDatasetNotFound when neither file exists.
func (s *DataService) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, source := s.paths.CleanedCSV, SourceProcessed
	if !config.FileExists(path) {
		path, source = s.paths.SampleCSV, SourceSample
	}
	if !config.FileExists(path) {
		s.logger.Warn("no dataset on disk",
			slog.String("processed", s.paths.CleanedCSV),
			slog.String("sample", s.paths.SampleCSV))
		return ErrDatasetNotFound
	}

	transactions, err := ingest.LoadCSV(path)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}

	s.mu.Lock()
	s.transactions = transactions
	s.source = source
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		slog.String("source", source),
		slog.String("path", path),
		slog.Int("rows", len(transactions)))
	return nil
}

// Reload re-reads the dataset, typically after a pipeline run.
func (s *DataService) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Loaded reports whether a dataset is in memory.
func (s *DataService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions) > 0
}

// Source returns the active dataset source, empty before Load.
func (s *DataService) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Transactions returns the dataset narrowed by the filter. Returns
// ErrDatasetNotFound before a successful Load and ErrNoData when the
// filter matches nothing.
func (s *DataService) Transactions(ctx context.Context, filter Filter) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	transactions := s.transactions
	s.mu.RUnlock()

	if len(transactions) == 0 {
		return nil, ErrDatasetNotFound
	}

	filtered := filter.Apply(transactions)
	if len(filtered) == 0 {
		return nil, ErrNoData
	}
	return filtered, nil
}

// FilterOptions returns the dataset's filterable dimensions.
func (s *DataService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	transactions, err := s.Transactions(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	minDate := transactions[0].InvoiceDate
	maxDate := transactions[0].InvoiceDate
	countrySet := make(map[string]struct{})
	for _, tx := range transactions {
		if tx.InvoiceDate.Before(minDate) {
			minDate = tx.InvoiceDate
		}
		if tx.InvoiceDate.After(maxDate) {
			maxDate = tx.InvoiceDate
		}
		countrySet[tx.Country] = struct{}{}
	}

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()

	return &FilterOptions{
		DateMin:   minDate.Format(FilterDateLayout),
		DateMax:   maxDate.Format(FilterDateLayout),
		Countries: countries,
		Source:    source,
		Rows:      len(transactions),
	}, nil
}
