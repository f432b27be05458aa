package metrics

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// MonthPoint is one month of the revenue series.
type MonthPoint struct {
	YearMonth     string   `json:"year_month"`
	Revenue       float64  `json:"revenue"`
	Orders        int      `json:"orders"`
	Customers     int      `json:"customers"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	OrdersGrowth  *float64 `json:"orders_growth,omitempty"`
}

// RevenueMetrics is the monthly revenue series plus its headline
// aggregates. Months are sorted ascending; growth fields are
// month-over-month percentages and nil for the first month.
type RevenueMetrics struct {
	TotalRevenue      float64      `json:"total_revenue"`
	AvgMonthlyRevenue float64      `json:"avg_monthly_revenue"`
	BestMonth         string       `json:"best_month"`
	BestMonthRevenue  float64      `json:"best_month_revenue"`
	WorstMonth        string       `json:"worst_month"`
	WorstMonthRevenue float64      `json:"worst_month_revenue"`
	Monthly           []MonthPoint `json:"monthly"`
}

// MonthlyRevenue aggregates revenue, distinct orders and distinct
// customers per calendar month.
func MonthlyRevenue(transactions []domain.Transaction) (*RevenueMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	type monthAgg struct {
		revenue   float64
		orders    map[string]struct{}
		customers map[string]struct{}
	}

	byMonth := make(map[string]*monthAgg)
	var total float64
	for _, tx := range transactions {
		key := tx.YearMonth()
		agg, ok := byMonth[key]
		if !ok {
			agg = &monthAgg{orders: make(map[string]struct{}), customers: make(map[string]struct{})}
			byMonth[key] = agg
		}
		agg.revenue += tx.Revenue()
		agg.orders[tx.Invoice] = struct{}{}
		agg.customers[tx.CustomerID] = struct{}{}
		total += tx.Revenue()
	}

	// "2006-01" keys sort chronologically as strings.
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &RevenueMetrics{
		TotalRevenue: total,
		Monthly:      make([]MonthPoint, 0, len(keys)),
	}

	for i, key := range keys {
		agg := byMonth[key]
		point := MonthPoint{
			YearMonth: key,
			Revenue:   agg.revenue,
			Orders:    len(agg.orders),
			Customers: len(agg.customers),
		}
		if i > 0 {
			prev := result.Monthly[i-1]
			point.RevenueGrowth = pctChange(prev.Revenue, agg.revenue)
			point.OrdersGrowth = pctChange(float64(prev.Orders), float64(len(agg.orders)))
		}
		result.Monthly = append(result.Monthly, point)

		if result.BestMonth == "" || agg.revenue > result.BestMonthRevenue {
			result.BestMonth = key
			result.BestMonthRevenue = agg.revenue
		}
		if result.WorstMonth == "" || agg.revenue < result.WorstMonthRevenue {
			result.WorstMonth = key
			result.WorstMonthRevenue = agg.revenue
		}
	}
	result.AvgMonthlyRevenue = total / float64(len(keys))

	return result, nil
}

// pctChange returns the percentage change from prev to cur, nil when the
// base is zero.
func pctChange(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (cur - prev) / prev * 100
	return &v
}
