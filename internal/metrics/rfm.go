package metrics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// ComputeRFM scores every customer on recency, frequency and monetary
// value and assigns a segment label.
//
// Recency is days between the customer's last purchase and the reference
// date (one day after the newest transaction), scored 5..1 so the most
// recent buyers score highest. Frequency and monetary are scored 1..5 on
// ascending quintiles with first-occurrence rank breaking ties, so equal
// values spread across bins instead of collapsing into one.
func ComputeRFM(transactions []domain.Transaction) ([]domain.CustomerRFM, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	type customerAgg struct {
		lastPurchase time.Time
		invoices     map[string]struct{}
		monetary     float64
	}

	byCustomer := make(map[string]*customerAgg)
	var newest time.Time
	for _, tx := range transactions {
		agg, ok := byCustomer[tx.CustomerID]
		if !ok {
			agg = &customerAgg{invoices: make(map[string]struct{})}
			byCustomer[tx.CustomerID] = agg
		}
		if tx.InvoiceDate.After(agg.lastPurchase) {
			agg.lastPurchase = tx.InvoiceDate
		}
		agg.invoices[tx.Invoice] = struct{}{}
		agg.monetary += tx.Revenue()
		if tx.InvoiceDate.After(newest) {
			newest = tx.InvoiceDate
		}
	}

	reference := newest.Add(24 * time.Hour)

	customers := make([]domain.CustomerRFM, 0, len(byCustomer))
	for id, agg := range byCustomer {
		customers = append(customers, domain.CustomerRFM{
			CustomerID: id,
			Recency:    int(reference.Sub(agg.lastPurchase).Hours() / 24),
			Frequency:  len(agg.invoices),
			Monetary:   agg.monetary,
		})
	}

	// Stable customer order so scores and output files are reproducible.
	sort.Slice(customers, func(i, j int) bool {
		return lessCustomerID(customers[i].CustomerID, customers[j].CustomerID)
	})

	scoreRecency(customers)
	scoreByRank(customers,
		func(c domain.CustomerRFM) float64 { return float64(c.Frequency) },
		func(c *domain.CustomerRFM, s int) { c.FScore = s })
	scoreByRank(customers,
		func(c domain.CustomerRFM) float64 { return c.Monetary },
		func(c *domain.CustomerRFM, s int) { c.MScore = s })

	for i := range customers {
		c := &customers[i]
		c.RFMScore = strconv.Itoa(c.RScore) + strconv.Itoa(c.FScore) + strconv.Itoa(c.MScore)
		c.Segment = domain.SegmentFor(c.RScore, c.FScore, c.MScore)
	}

	return customers, nil
}

// scoreRecency assigns quintile scores on the recency values themselves,
// inverted so the lowest recency gets 5. Bin edges are the linearly
// interpolated quantiles of the population; ties on an edge fall into
// the lower bin.
func scoreRecency(customers []domain.CustomerRFM) {
	values := make([]float64, len(customers))
	for i, c := range customers {
		values[i] = float64(c.Recency)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	edges := [4]float64{
		quantileSorted(sorted, 0.2),
		quantileSorted(sorted, 0.4),
		quantileSorted(sorted, 0.6),
		quantileSorted(sorted, 0.8),
	}

	const eps = 1e-9
	for i := range customers {
		v := values[i]
		score := 1
		switch {
		case v <= edges[0]+eps:
			score = 5
		case v <= edges[1]+eps:
			score = 4
		case v <= edges[2]+eps:
			score = 3
		case v <= edges[3]+eps:
			score = 2
		}
		customers[i].RScore = score
	}
}

// scoreByRank assigns ascending quintile scores on the rank of each
// value, first occurrence winning ties. Rank r of n lands in the lowest
// bin k (1..5) with r <= 1 + k/5 * (n-1).
func scoreByRank(customers []domain.CustomerRFM, value func(domain.CustomerRFM) float64, assign func(*domain.CustomerRFM, int)) {
	n := len(customers)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return value(customers[order[a]]) < value(customers[order[b]])
	})

	const eps = 1e-9
	for rank, idx := range order {
		r := float64(rank + 1)
		score := 5
		for k := 1; k < 5; k++ {
			if r <= 1+float64(k)/5*float64(n-1)+eps {
				score = k
				break
			}
		}
		assign(&customers[idx], score)
	}
}

// quantileSorted computes the q-th quantile of an ascending slice with
// linear interpolation between closest ranks.
func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
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

// lessCustomerID orders numeric customer IDs numerically and anything
// else lexicographically.
func lessCustomerID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// SegmentSummary is the per-segment rollup served by the dashboard.
type SegmentSummary struct {
	Segment     string  `json:"segment"`
	Customers   int     `json:"customers"`
	Revenue     float64 `json:"revenue"`
	AvgRecency  float64 `json:"avg_recency"`
	AvgMonetary float64 `json:"avg_monetary"`
}

// SummarizeSegments rolls the per-customer RFM rows up by segment,
// sorted by revenue descending.
func SummarizeSegments(customers []domain.CustomerRFM) []SegmentSummary {
	type agg struct {
		count    int
		revenue  float64
		recency  int
		monetary float64
	}
	bySegment := make(map[string]*agg)
	for _, c := range customers {
		a, ok := bySegment[c.Segment]
		if !ok {
			a = &agg{}
			bySegment[c.Segment] = a
		}
		a.count++
		a.revenue += c.Monetary
		a.recency += c.Recency
		a.monetary += c.Monetary
	}

	summaries := make([]SegmentSummary, 0, len(bySegment))
	for segment, a := range bySegment {
		summaries = append(summaries, SegmentSummary{
			Segment:     segment,
			Customers:   a.count,
			Revenue:     a.revenue,
			AvgRecency:  float64(a.recency) / float64(a.count),
			AvgMonetary: a.monetary / float64(a.count),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Revenue != summaries[j].Revenue {
			return summaries[i].Revenue > summaries[j].Revenue
		}
		return summaries[i].Segment < summaries[j].Segment
	})
	return summaries
}
