// Package metrics computes the derived business aggregates over the
// cleaned transaction dataset. Every function is pure: same input, same
// output, no hidden state.
package metrics

import "errors"

// ErrNoData is returned by every metric function when the input dataset
// is empty. Handlers map it to a 404 problem response.
var ErrNoData = errors.New("no data to analyze")

// DayNames maps the day-of-week convention of the processed dataset
// (0 = Monday) to display names.
var DayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
