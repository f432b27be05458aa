package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/ingest"
	"retailpulse/pkg/contracts/domain"
)

func writeDataset(t *testing.T, path string, txs []domain.Transaction) {
	t.Helper()
	records := make([][]string, len(txs))
	for i, tx := range txs {
		records[i] = ingest.CSVRecord(tx)
	}
	require.NoError(t, exporter.NewCSVWriter(nil).WriteSimpleCSV(path, ingest.CleanedHeaders, records))
}

func fixtureTransactions() []domain.Transaction {
	day := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
	}
	return []domain.Transaction{
		{Invoice: "1", StockCode: "A", Quantity: 1, Price: 10, InvoiceDate: day(2010, 11, 1), CustomerID: "a", Country: "United Kingdom"},
		{Invoice: "2", StockCode: "B", Quantity: 2, Price: 5, InvoiceDate: day(2010, 12, 15), CustomerID: "b", Country: "France"},
		{Invoice: "3", StockCode: "C", Quantity: 3, Price: 2, InvoiceDate: day(2011, 1, 20), CustomerID: "a", Country: "United Kingdom"},
	}
}

func TestDataServicePrefersProcessedDataset(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	writeDataset(t, paths.CleanedCSV, fixtureTransactions())
	writeDataset(t, paths.SampleCSV, fixtureTransactions()[:1])

	svc := NewDataService(paths, nil)
	require.NoError(t, svc.Load(context.Background()))

	assert.Equal(t, SourceProcessed, svc.Source())
	txs, err := svc.Transactions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestDataServiceFallsBackToSample(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	writeDataset(t, paths.SampleCSV, fixtureTransactions())

	svc := NewDataService(paths, nil)
	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, SourceSample, svc.Source())
}

func TestDataServiceNoDatasetOnDisk(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	svc := NewDataService(paths, nil)
	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.False(t, svc.Loaded())

	_, err = svc.Transactions(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDataServiceFilter(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	writeDataset(t, paths.CleanedCSV, fixtureTransactions())

	svc := NewDataService(paths, nil)
	require.NoError(t, svc.Load(context.Background()))

	filter, err := ParseFilter("2010-12-01", "2010-12-31", "")
	require.NoError(t, err)
	txs, err := svc.Transactions(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2", txs[0].Invoice)

	filter, err = ParseFilter("", "", "United Kingdom")
	require.NoError(t, err)
	txs, err = svc.Transactions(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	filter, err = ParseFilter("2012-01-01", "", "")
	require.NoError(t, err)
	_, err = svc.Transactions(context.Background(), filter)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDataServiceFilterOptions(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	writeDataset(t, paths.CleanedCSV, fixtureTransactions())

	svc := NewDataService(paths, nil)
	require.NoError(t, svc.Load(context.Background()))

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2010-11-01", opts.DateMin)
	assert.Equal(t, "2011-01-20", opts.DateMax)
	assert.Equal(t, []string{"France", "United Kingdom"}, opts.Countries)
	assert.Equal(t, SourceProcessed, opts.Source)
	assert.Equal(t, 3, opts.Rows)
}

func TestParseFilter(t *testing.T) {
	_, err := ParseFilter("2011-01-31", "2011-01-01", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ParseFilter("31/01/2011", "", "")
	assert.Error(t, err)

	f, err := ParseFilter("", "", "")
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestFilterToDayIsInclusive(t *testing.T) {
	f, err := ParseFilter("", "2010-11-01", "")
	require.NoError(t, err)

	tx := fixtureTransactions()[0] // 2010-11-01 10:00
	assert.True(t, f.Match(tx), "transactions on the to-day itself must match")
}
