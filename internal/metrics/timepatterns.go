package metrics

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// DayStat aggregates one day of the week (0 = Monday).
type DayStat struct {
	DayOfWeek int     `json:"day_of_week"`
	DayName   string  `json:"day_name"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
}

// HourStat aggregates one hour of the day.
type HourStat struct {
	Hour    int     `json:"hour"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// TimeMetrics is the day-of-week and hour-of-day breakdown. Only
// observed days and hours appear, sorted ascending.
type TimeMetrics struct {
	PeakDay  string     `json:"peak_day"`
	PeakHour int        `json:"peak_hour"`
	Days     []DayStat  `json:"days"`
	Hours    []HourStat `json:"hours"`
}

// TimePatterns aggregates revenue and distinct orders by day of week and
// by hour of day.
func TimePatterns(transactions []domain.Transaction) (*TimeMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	type agg struct {
		revenue float64
		orders  map[string]struct{}
	}
	byDay := make(map[int]*agg)
	byHour := make(map[int]*agg)

	add := func(m map[int]*agg, key string, bucket int, revenue float64) {
		a, ok := m[bucket]
		if !ok {
			a = &agg{orders: make(map[string]struct{})}
			m[bucket] = a
		}
		a.revenue += revenue
		a.orders[key] = struct{}{}
	}

	for _, tx := range transactions {
		add(byDay, tx.Invoice, tx.DayOfWeek(), tx.Revenue())
		add(byHour, tx.Invoice, tx.Hour(), tx.Revenue())
	}

	result := &TimeMetrics{}

	days := sortedKeys(byDay)
	for _, d := range days {
		result.Days = append(result.Days, DayStat{
			DayOfWeek: d,
			DayName:   DayNames[d],
			Revenue:   byDay[d].revenue,
			Orders:    len(byDay[d].orders),
		})
	}

	hours := sortedKeys(byHour)
	for _, h := range hours {
		result.Hours = append(result.Hours, HourStat{
			Hour:    h,
			Revenue: byHour[h].revenue,
			Orders:  len(byHour[h].orders),
		})
	}

	var best float64
	for _, d := range result.Days {
		if d.Revenue > best {
			best = d.Revenue
			result.PeakDay = d.DayName
		}
	}
	best = 0
	for _, h := range result.Hours {
		if h.Revenue > best {
			best = h.Revenue
			result.PeakHour = h.Hour
		}
	}

	return result, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
