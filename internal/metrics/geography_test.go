package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func TestGeographic(t *testing.T) {
	txs := []domain.Transaction{
		mtx("1", "a", "United Kingdom", date(2010, 11, 1), 1, 600),
		mtx("2", "b", "United Kingdom", date(2010, 11, 2), 1, 200),
		mtx("3", "c", "France", date(2010, 11, 3), 2, 100),
	}

	got, err := Geographic(txs, "United Kingdom")
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalCountries)
	assert.Equal(t, 800.0, got.HomeRevenue)
	assert.Equal(t, 80.0, got.HomeShare)
	assert.Equal(t, 200.0, got.InternationalRevenue)

	require.Len(t, got.Countries, 2)
	assert.Equal(t, "United Kingdom", got.Countries[0].Country, "sorted by revenue desc")
	assert.Equal(t, 2, got.Countries[0].Orders)
	assert.Equal(t, 2, got.Countries[0].Customers)
	assert.Equal(t, int64(2), got.Countries[1].Quantity)
}

func TestGeographicSharesSumToTotal(t *testing.T) {
	txs := []domain.Transaction{
		mtx("1", "a", "United Kingdom", date(2010, 11, 1), 3, 2.55),
		mtx("2", "b", "France", date(2010, 11, 2), 7, 1.69),
		mtx("3", "c", "Germany", date(2010, 11, 3), 2, 3.39),
		mtx("4", "d", "EIRE", date(2010, 11, 4), 5, 0.85),
	}

	got, err := Geographic(txs, "United Kingdom")
	require.NoError(t, err)

	var shareSum, revenueSum float64
	for _, c := range got.Countries {
		shareSum += c.MarketShare
		revenueSum += c.Revenue
	}
	assert.InDelta(t, 100.0, shareSum, 1e-6)
	assert.InDelta(t, revenueSum, got.HomeRevenue+got.InternationalRevenue, 1e-9)
}

func TestGeographicHomeCountryAbsent(t *testing.T) {
	txs := []domain.Transaction{
		mtx("1", "a", "France", date(2010, 11, 1), 1, 100),
	}

	got, err := Geographic(txs, "United Kingdom")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.HomeRevenue)
	assert.Equal(t, 100.0, got.InternationalRevenue)
}

func TestGeographicEmpty(t *testing.T) {
	_, err := Geographic(nil, "United Kingdom")
	assert.ErrorIs(t, err, ErrNoData)
}
