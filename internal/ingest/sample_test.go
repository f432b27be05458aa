package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSampleDeterministic(t *testing.T) {
	cfg := SampleConfig{Transactions: 500, Customers: 50, Seed: 42, StartYear: 2010, EndYear: 2011}

	first := GenerateSample(cfg)
	second := GenerateSample(cfg)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "same seed must yield the same dataset")
}

func TestGenerateSampleIsClean(t *testing.T) {
	txs := GenerateSample(SampleConfig{Transactions: 1000, Customers: 100, Seed: 7, StartYear: 2010, EndYear: 2011})

	for _, tx := range txs {
		assert.True(t, tx.IsClean(), "sample rows must pass cleaning: %+v", tx)
	}
}

func TestGenerateSampleSortedByDate(t *testing.T) {
	txs := GenerateSample(DefaultSampleConfig())

	for i := 1; i < len(txs); i++ {
		assert.False(t, txs[i].InvoiceDate.Before(txs[i-1].InvoiceDate))
	}
}

func TestGenerateSampleCountriesAndYears(t *testing.T) {
	txs := GenerateSample(SampleConfig{Transactions: 2000, Customers: 100, Seed: 1, StartYear: 2010, EndYear: 2011})

	countries := make(map[string]int)
	for _, tx := range txs {
		countries[tx.Country]++
		y := tx.Year()
		assert.True(t, y == 2010 || y == 2011)
	}

	// UK dominates the weighted draw.
	assert.Greater(t, countries["United Kingdom"], len(txs)/2)
	assert.Greater(t, len(countries), 1)
}

func TestGenerateSampleZeroConfigFallsBackToDefault(t *testing.T) {
	txs := GenerateSample(SampleConfig{})
	def := GenerateSample(DefaultSampleConfig())
	assert.Equal(t, len(def), len(txs))
}
