package metrics

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// CountryStat aggregates one country's performance. MarketShare is the
// percentage of total revenue.
type CountryStat struct {
	Country     string  `json:"country"`
	Revenue     float64 `json:"revenue"`
	Orders      int     `json:"orders"`
	Customers   int     `json:"customers"`
	Quantity    int64   `json:"quantity"`
	MarketShare float64 `json:"market_share"`
}

// GeographicMetrics is the per-country breakdown plus the home-market vs
// international split. Countries are sorted by revenue descending.
type GeographicMetrics struct {
	TotalCountries       int           `json:"total_countries"`
	HomeCountry          string        `json:"home_country"`
	HomeRevenue          float64       `json:"home_revenue"`
	HomeShare            float64       `json:"home_share"`
	InternationalRevenue float64       `json:"international_revenue"`
	Countries            []CountryStat `json:"countries"`
}

// Geographic breaks revenue down by country. homeCountry picks which
// market the home/international split is computed against.
func Geographic(transactions []domain.Transaction, homeCountry string) (*GeographicMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	type countryAgg struct {
		revenue   float64
		quantity  int64
		orders    map[string]struct{}
		customers map[string]struct{}
	}

	byCountry := make(map[string]*countryAgg)
	var total float64
	for _, tx := range transactions {
		agg, ok := byCountry[tx.Country]
		if !ok {
			agg = &countryAgg{orders: make(map[string]struct{}), customers: make(map[string]struct{})}
			byCountry[tx.Country] = agg
		}
		agg.revenue += tx.Revenue()
		agg.quantity += tx.Quantity
		agg.orders[tx.Invoice] = struct{}{}
		agg.customers[tx.CustomerID] = struct{}{}
		total += tx.Revenue()
	}

	result := &GeographicMetrics{
		TotalCountries: len(byCountry),
		HomeCountry:    homeCountry,
		Countries:      make([]CountryStat, 0, len(byCountry)),
	}

	for country, agg := range byCountry {
		stat := CountryStat{
			Country:   country,
			Revenue:   agg.revenue,
			Orders:    len(agg.orders),
			Customers: len(agg.customers),
			Quantity:  agg.quantity,
		}
		if total > 0 {
			stat.MarketShare = agg.revenue / total * 100
		}
		result.Countries = append(result.Countries, stat)
	}

	sort.Slice(result.Countries, func(i, j int) bool {
		if result.Countries[i].Revenue != result.Countries[j].Revenue {
			return result.Countries[i].Revenue > result.Countries[j].Revenue
		}
		return result.Countries[i].Country < result.Countries[j].Country
	})

	if agg, ok := byCountry[homeCountry]; ok {
		result.HomeRevenue = agg.revenue
		if total > 0 {
			result.HomeShare = agg.revenue / total * 100
		}
	}
	result.InternationalRevenue = total - result.HomeRevenue

	return result, nil
}
