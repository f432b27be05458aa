package services

import (
	"fmt"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// FilterDateLayout is the date format accepted in filter query params.
const FilterDateLayout = "2006-01-02"

// Filter narrows the dataset before metrics run over it. Zero values
// mean "no constraint". From and To are inclusive calendar days.
type Filter struct {
	From    time.Time
	To      time.Time
	Country string
}

// ParseFilter builds a filter from raw query values. Empty strings are
// unconstrained dimensions.
func ParseFilter(from, to, country string) (Filter, error) {
	var f Filter
	var err error

	if from != "" {
		f.From, err = time.Parse(FilterDateLayout, from)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
	}
	if to != "" {
		f.To, err = time.Parse(FilterDateLayout, to)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return Filter{}, ErrInvalidDateRange
	}
	f.Country = country
	return f, nil
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && f.Country == ""
}

// Match reports whether a transaction passes the filter.
func (f Filter) Match(tx domain.Transaction) bool {
	if !f.From.IsZero() && tx.InvoiceDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.InvoiceDate.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	if f.Country != "" && tx.Country != f.Country {
		return false
	}
	return true
}

// Apply returns the transactions passing the filter. The input is never
// modified; an unconstrained filter returns it as-is.
func (f Filter) Apply(transactions []domain.Transaction) []domain.Transaction {
	if f.IsZero() {
		return transactions
	}
	out := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
