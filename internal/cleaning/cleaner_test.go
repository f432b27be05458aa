package cleaning

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func tx(invoice, customer string, quantity int64, price float64) domain.Transaction {
	return domain.Transaction{
		Invoice:     invoice,
		StockCode:   "85123A",
		Quantity:    quantity,
		Price:       price,
		InvoiceDate: time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC),
		CustomerID:  customer,
		Country:     "United Kingdom",
	}
}

func TestCleanFilters(t *testing.T) {
	input := []domain.Transaction{
		tx("536365", "17850", 6, 2.55),
		tx("C536379", "14527", 1, 27.50), // cancellation
		tx("536380", "", 4, 1.25),        // missing customer
		tx("536381", "13047", -2, 1.69),  // negative quantity
		tx("536382", "13047", 3, 0),      // zero price
		tx("536383", "12583", 12, 3.39),
	}

	cleaned, stats := NewCleaner(nil, 0.99).Clean(input)

	require.Len(t, cleaned, 2)
	assert.Equal(t, 6, stats.InitialRows)
	assert.Equal(t, 1, stats.Cancellations)
	assert.Equal(t, 1, stats.MissingCustomer)
	assert.Equal(t, 2, stats.InvalidValues)
	assert.Equal(t, 2, stats.RemainingRows)
	assert.Equal(t, "536365", cleaned[0].Invoice)
	assert.Equal(t, "536383", cleaned[1].Invoice)
}

func TestCleanOutlierCapsComputedAfterFilters(t *testing.T) {
	// One extreme row among many identical ones. The cancellation with a
	// huge quantity must not influence the cap.
	input := []domain.Transaction{tx("C999999", "11111", 100000, 9999)}
	for i := 0; i < 99; i++ {
		input = append(input, tx("536"+strconv.Itoa(400+i), "17850", 10, 2.00))
	}
	input = append(input, tx("536600", "17850", 5000, 2.00))

	cleaned, stats := NewCleaner(nil, 0.99).Clean(input)

	assert.Equal(t, 1, stats.Cancellations)
	assert.Equal(t, 1, stats.Outliers, "only the surviving extreme row is an outlier")
	assert.Len(t, cleaned, 99)
	assert.Less(t, stats.QuantityCap, 5000.0)
}

func TestCleanIdempotentWithoutBorderlineRows(t *testing.T) {
	input := []domain.Transaction{
		tx("1", "a", 5, 1.0), tx("2", "b", 5, 1.0), tx("3", "c", 5, 1.0),
		tx("4", "d", 5, 1.0), tx("5", "e", 5, 1.0),
	}

	cleaner := NewCleaner(nil, 0.99)
	once, _ := cleaner.Clean(input)
	twice, _ := cleaner.Clean(once)

	assert.Equal(t, once, twice)
}

func TestCleanEmptyInput(t *testing.T) {
	cleaned, stats := NewCleaner(nil, 0.99).Clean(nil)
	assert.Empty(t, cleaned)
	assert.Equal(t, 0, stats.InitialRows)
	assert.Equal(t, 0.0, stats.RetentionRate())
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, 5.5, Percentile(values, 0.5))
	assert.Equal(t, 1.0, Percentile(values, 0))
	assert.Equal(t, 10.0, Percentile(values, 1))
	assert.InDelta(t, 9.91, Percentile(values, 0.99), 1e-9)
	assert.Equal(t, 0.0, Percentile(nil, 0.5))

	// Input order must not matter.
	shuffled := []float64{7, 1, 10, 3, 9, 2, 8, 4, 6, 5}
	assert.Equal(t, Percentile(values, 0.75), Percentile(shuffled, 0.75))
}
