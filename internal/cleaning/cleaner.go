// Package cleaning implements the first pipeline stage: filtering raw
// transactions down to the analyzable dataset.
package cleaning

import (
	"log/slog"
	"math"
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// DefaultOutlierPercentile keeps rows at or below the 99th percentile of
// quantity and price.
const DefaultOutlierPercentile = 0.99

// Stats reports what each cleaning filter removed.
type Stats struct {
	InitialRows     int     `json:"initial_rows"`
	Cancellations   int     `json:"cancellations"`
	MissingCustomer int     `json:"missing_customer"`
	InvalidValues   int     `json:"invalid_values"`
	Outliers        int     `json:"outliers"`
	RemainingRows   int     `json:"remaining_rows"`
	QuantityCap     float64 `json:"quantity_cap"`
	PriceCap        float64 `json:"price_cap"`
}

// RetentionRate is the share of input rows that survived cleaning.
func (s *Stats) RetentionRate() float64 {
	if s.InitialRows == 0 {
		return 0
	}
	return float64(s.RemainingRows) / float64(s.InitialRows)
}

// Cleaner applies the cleaning filters in a fixed order. The order
// matters: the outlier caps are computed only over rows that survived
// the earlier filters.
type Cleaner struct {
	logger            *slog.Logger
	outlierPercentile float64
}

// NewCleaner creates a cleaner. A percentile outside (0, 1] falls back
// to the default.
func NewCleaner(logger *slog.Logger, outlierPercentile float64) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if outlierPercentile <= 0 || outlierPercentile > 1 {
		outlierPercentile = DefaultOutlierPercentile
	}
	return &Cleaner{logger: logger, outlierPercentile: outlierPercentile}
}

// Clean filters the transactions:
//  1. drop cancellations (invoice prefix "C")
//  2. drop rows with a missing customer ID
//  3. drop non-positive quantities and prices
//  4. drop rows above the percentile caps on quantity and price
//
// The input slice is not modified. Running Clean on its own output is a
// no-op apart from possible re-capping on the smaller population.
func (c *Cleaner) Clean(transactions []domain.Transaction) ([]domain.Transaction, *Stats) {
	stats := &Stats{InitialRows: len(transactions)}

	kept := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		switch {
		case tx.IsCancellation():
			stats.Cancellations++
		case tx.CustomerID == "":
			stats.MissingCustomer++
		case tx.Quantity <= 0 || tx.Price <= 0:
			stats.InvalidValues++
		default:
			kept = append(kept, tx)
		}
	}

	quantities := make([]float64, len(kept))
	prices := make([]float64, len(kept))
	for i, tx := range kept {
		quantities[i] = float64(tx.Quantity)
		prices[i] = tx.Price
	}
	stats.QuantityCap = Percentile(quantities, c.outlierPercentile)
	stats.PriceCap = Percentile(prices, c.outlierPercentile)

	cleaned := kept[:0:len(kept)]
	for _, tx := range kept {
		if float64(tx.Quantity) > stats.QuantityCap || tx.Price > stats.PriceCap {
			stats.Outliers++
			continue
		}
		cleaned = append(cleaned, tx)
	}
	stats.RemainingRows = len(cleaned)

	c.logger.Info("cleaning complete",
		slog.Int("initial_rows", stats.InitialRows),
		slog.Int("cancellations", stats.Cancellations),
		slog.Int("missing_customer", stats.MissingCustomer),
		slog.Int("invalid_values", stats.InvalidValues),
		slog.Int("outliers", stats.Outliers),
		slog.Int("remaining", stats.RemainingRows),
		slog.Float64("quantity_cap", stats.QuantityCap),
		slog.Float64("price_cap", stats.PriceCap))

	return cleaned, stats
}

// Percentile computes the q-th percentile with linear interpolation
// between closest ranks. Returns 0 for an empty input.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
