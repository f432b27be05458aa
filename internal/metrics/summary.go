package metrics

import (
	"sort"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// DateRange is the inclusive span of the dataset.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SummaryStats are the headline numbers on the dashboard.
type SummaryStats struct {
	TotalRevenue    float64   `json:"total_revenue"`
	TotalOrders     int       `json:"total_orders"`
	TotalCustomers  int       `json:"total_customers"`
	TotalProducts   int       `json:"total_products"`
	TotalCountries  int       `json:"total_countries"`
	AvgOrderValue   float64   `json:"avg_order_value"`
	RepeatCustomers int       `json:"repeat_customers"`
	RepeatRate      float64   `json:"repeat_rate"`
	DateRange       DateRange `json:"date_range"`
}

// Summary computes the dataset-wide totals. AvgOrderValue is mean
// revenue per distinct invoice; RepeatRate is the percentage of
// customers with more than one distinct invoice.
func Summary(transactions []domain.Transaction) (*SummaryStats, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	orders := make(map[string]struct{})
	products := make(map[string]struct{})
	countries := make(map[string]struct{})
	ordersByCustomer := make(map[string]map[string]struct{})

	var total float64
	minDate := transactions[0].InvoiceDate
	maxDate := transactions[0].InvoiceDate
	for _, tx := range transactions {
		total += tx.Revenue()
		orders[tx.Invoice] = struct{}{}
		products[tx.StockCode] = struct{}{}
		countries[tx.Country] = struct{}{}

		set, ok := ordersByCustomer[tx.CustomerID]
		if !ok {
			set = make(map[string]struct{})
			ordersByCustomer[tx.CustomerID] = set
		}
		set[tx.Invoice] = struct{}{}

		if tx.InvoiceDate.Before(minDate) {
			minDate = tx.InvoiceDate
		}
		if tx.InvoiceDate.After(maxDate) {
			maxDate = tx.InvoiceDate
		}
	}

	repeat := 0
	for _, set := range ordersByCustomer {
		if len(set) > 1 {
			repeat++
		}
	}

	return &SummaryStats{
		TotalRevenue:    total,
		TotalOrders:     len(orders),
		TotalCustomers:  len(ordersByCustomer),
		TotalProducts:   len(products),
		TotalCountries:  len(countries),
		AvgOrderValue:   total / float64(len(orders)),
		RepeatCustomers: repeat,
		RepeatRate:      float64(repeat) / float64(len(ordersByCustomer)) * 100,
		DateRange: DateRange{
			Start: minDate.Format(time.DateOnly),
			End:   maxDate.Format(time.DateOnly),
		},
	}, nil
}

// YoYMetrics compares the two most recent years over their overlapping
// months only, so a partial final year is not penalized.
type YoYMetrics struct {
	PriorYear        int     `json:"prior_year"`
	LatestYear       int     `json:"latest_year"`
	PriorRevenue     float64 `json:"prior_revenue"`
	LatestRevenue    float64 `json:"latest_revenue"`
	GrowthPct        float64 `json:"growth_pct"`
	ComparableMonths int     `json:"comparable_months"`
}

// YoYGrowth computes year-over-year revenue growth between the two most
// recent years in the dataset, restricted to months present in both.
func YoYGrowth(transactions []domain.Transaction) (*YoYMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	monthsByYear := make(map[int]map[int]struct{})
	for _, tx := range transactions {
		months, ok := monthsByYear[tx.Year()]
		if !ok {
			months = make(map[int]struct{})
			monthsByYear[tx.Year()] = months
		}
		months[tx.Month()] = struct{}{}
	}
	if len(monthsByYear) < 2 {
		return nil, ErrNoData
	}

	years := make([]int, 0, len(monthsByYear))
	for y := range monthsByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	prior, latest := years[len(years)-2], years[len(years)-1]

	common := make(map[int]struct{})
	for m := range monthsByYear[prior] {
		if _, ok := monthsByYear[latest][m]; ok {
			common[m] = struct{}{}
		}
	}
	if len(common) == 0 {
		return nil, ErrNoData
	}

	result := &YoYMetrics{
		PriorYear:        prior,
		LatestYear:       latest,
		ComparableMonths: len(common),
	}
	for _, tx := range transactions {
		if _, ok := common[tx.Month()]; !ok {
			continue
		}
		switch tx.Year() {
		case prior:
			result.PriorRevenue += tx.Revenue()
		case latest:
			result.LatestRevenue += tx.Revenue()
		}
	}
	if result.PriorRevenue > 0 {
		result.GrowthPct = (result.LatestRevenue - result.PriorRevenue) / result.PriorRevenue * 100
	}

	return result, nil
}
