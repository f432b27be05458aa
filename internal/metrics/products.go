package metrics

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// DefaultTopProducts is the list length served when no limit is given.
const DefaultTopProducts = 20

// ProductStat aggregates one product's performance.
type ProductStat struct {
	StockCode   string  `json:"stock_code"`
	Description string  `json:"description"`
	Revenue     float64 `json:"revenue"`
	Quantity    int64   `json:"quantity"`
	Orders      int     `json:"orders"`
	Customers   int     `json:"customers"`
}

// ProductMetrics carries the top-N product lists by revenue and by
// units sold.
type ProductMetrics struct {
	TotalProducts int           `json:"total_products"`
	ByRevenue     []ProductStat `json:"by_revenue"`
	ByQuantity    []ProductStat `json:"by_quantity"`
}

// TopProducts aggregates per product and returns the top limit entries
// by revenue and by quantity. A non-positive limit uses the default.
func TopProducts(transactions []domain.Transaction, limit int) (*ProductMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}
	if limit <= 0 {
		limit = DefaultTopProducts
	}

	type productAgg struct {
		description string
		revenue     float64
		quantity    int64
		orders      map[string]struct{}
		customers   map[string]struct{}
	}

	byProduct := make(map[string]*productAgg)
	for _, tx := range transactions {
		agg, ok := byProduct[tx.StockCode]
		if !ok {
			agg = &productAgg{
				description: tx.Description,
				orders:      make(map[string]struct{}),
				customers:   make(map[string]struct{}),
			}
			byProduct[tx.StockCode] = agg
		}
		agg.revenue += tx.Revenue()
		agg.quantity += tx.Quantity
		agg.orders[tx.Invoice] = struct{}{}
		agg.customers[tx.CustomerID] = struct{}{}
	}

	stats := make([]ProductStat, 0, len(byProduct))
	for code, agg := range byProduct {
		stats = append(stats, ProductStat{
			StockCode:   code,
			Description: agg.description,
			Revenue:     agg.revenue,
			Quantity:    agg.quantity,
			Orders:      len(agg.orders),
			Customers:   len(agg.customers),
		})
	}

	byRevenue := make([]ProductStat, len(stats))
	copy(byRevenue, stats)
	sort.Slice(byRevenue, func(i, j int) bool {
		if byRevenue[i].Revenue != byRevenue[j].Revenue {
			return byRevenue[i].Revenue > byRevenue[j].Revenue
		}
		return byRevenue[i].StockCode < byRevenue[j].StockCode
	})

	byQuantity := make([]ProductStat, len(stats))
	copy(byQuantity, stats)
	sort.Slice(byQuantity, func(i, j int) bool {
		if byQuantity[i].Quantity != byQuantity[j].Quantity {
			return byQuantity[i].Quantity > byQuantity[j].Quantity
		}
		return byQuantity[i].StockCode < byQuantity[j].StockCode
	})

	return &ProductMetrics{
		TotalProducts: len(stats),
		ByRevenue:     truncateProducts(byRevenue, limit),
		ByQuantity:    truncateProducts(byQuantity, limit),
	}, nil
}

func truncateProducts(stats []ProductStat, limit int) []ProductStat {
	if len(stats) > limit {
		return stats[:limit]
	}
	return stats
}
