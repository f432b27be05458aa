package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func TestCohortRetention(t *testing.T) {
	txs := []domain.Transaction{
		// Cohort 2010-11: a returns in month 1 and 2, b never returns.
		mtx("1", "a", "UK", date(2010, 11, 3), 1, 10),
		mtx("2", "b", "UK", date(2010, 11, 10), 1, 10),
		mtx("3", "a", "UK", date(2010, 12, 5), 1, 10),
		mtx("4", "a", "UK", date(2011, 1, 7), 1, 10),
		// Cohort 2010-12: c only.
		mtx("5", "c", "UK", date(2010, 12, 20), 1, 10),
	}

	got, err := CohortRetention(txs)
	require.NoError(t, err)

	require.Len(t, got.Cohorts, 2)
	assert.Equal(t, 2, got.MaxAge)

	nov := got.Cohorts[0]
	assert.Equal(t, "2010-11", nov.Cohort)
	assert.Equal(t, 2, nov.Size)
	require.Len(t, nov.Retention, 3)
	assert.Equal(t, 100.0, nov.Retention[0])
	assert.Equal(t, 50.0, nov.Retention[1])
	assert.Equal(t, 50.0, nov.Retention[2])

	dec := got.Cohorts[1]
	assert.Equal(t, "2010-12", dec.Cohort)
	assert.Equal(t, 1, dec.Size)
	assert.Equal(t, 100.0, dec.Retention[0])
	assert.Equal(t, 0.0, dec.Retention[1], "no activity past the cohort month")
}

func TestCohortRetentionAgeZeroAlwaysFull(t *testing.T) {
	txs := []domain.Transaction{
		mtx("1", "a", "UK", date(2010, 1, 1), 1, 10),
		mtx("2", "b", "UK", date(2010, 3, 1), 1, 10),
		mtx("3", "c", "UK", date(2010, 3, 15), 1, 10),
		mtx("4", "a", "UK", date(2010, 6, 1), 1, 10),
	}

	got, err := CohortRetention(txs)
	require.NoError(t, err)
	for _, cohort := range got.Cohorts {
		assert.Equal(t, 100.0, cohort.Retention[0], "cohort %s", cohort.Cohort)
	}
}

func TestCohortRetentionSinglePurchaseCustomer(t *testing.T) {
	// One customer, one purchase: their cohort exists at age 0 only.
	txs := []domain.Transaction{
		mtx("1", "solo", "UK", date(2011, 5, 12), 1, 42),
	}

	got, err := CohortRetention(txs)
	require.NoError(t, err)

	require.Len(t, got.Cohorts, 1)
	assert.Equal(t, "2011-05", got.Cohorts[0].Cohort)
	assert.Equal(t, 0, got.MaxAge)
	assert.Equal(t, []float64{100.0}, got.Cohorts[0].Retention)
}

func TestCohortAgeCrossesYearBoundary(t *testing.T) {
	txs := []domain.Transaction{
		mtx("1", "a", "UK", date(2010, 12, 1), 1, 10),
		mtx("2", "a", "UK", date(2011, 2, 1), 1, 10),
	}

	got, err := CohortRetention(txs)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MaxAge)
	assert.Equal(t, []float64{100, 0, 100}, got.Cohorts[0].Retention)
}

func TestCohortRetentionEmpty(t *testing.T) {
	_, err := CohortRetention(nil)
	assert.ErrorIs(t, err, ErrNoData)
}
