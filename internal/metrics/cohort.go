package metrics

import (
	"fmt"
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// CohortRow is one first-purchase-month cohort. Retention[age] is the
// percentage of the cohort's customers still transacting at that age;
// index 0 is 100 by construction. The slice runs to the matrix-wide
// maximum age, padded with zeros past the cohort's own last activity.
type CohortRow struct {
	Cohort    string    `json:"cohort"`
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

// CohortMetrics is the full retention matrix, cohorts sorted ascending.
type CohortMetrics struct {
	MaxAge  int         `json:"max_age"`
	Cohorts []CohortRow `json:"cohorts"`
}

// CohortRetention groups customers by the month of their first purchase
// and tracks what fraction of each cohort is still active at each
// monthly age.
func CohortRetention(transactions []domain.Transaction) (*CohortMetrics, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	// First purchase month per customer.
	firstMonth := make(map[string]int)
	for _, tx := range transactions {
		m := monthIndex(tx.Year(), tx.Month())
		if current, ok := firstMonth[tx.CustomerID]; !ok || m < current {
			firstMonth[tx.CustomerID] = m
		}
	}

	// Distinct active customers per (cohort, age).
	type cell struct {
		cohort int
		age    int
	}
	active := make(map[cell]map[string]struct{})
	maxAge := 0
	for _, tx := range transactions {
		cohort := firstMonth[tx.CustomerID]
		age := monthIndex(tx.Year(), tx.Month()) - cohort
		key := cell{cohort: cohort, age: age}
		set, ok := active[key]
		if !ok {
			set = make(map[string]struct{})
			active[key] = set
		}
		set[tx.CustomerID] = struct{}{}
		if age > maxAge {
			maxAge = age
		}
	}

	cohortSizes := make(map[int]int)
	for _, cohort := range firstMonth {
		cohortSizes[cohort]++
	}

	cohorts := make([]int, 0, len(cohortSizes))
	for cohort := range cohortSizes {
		cohorts = append(cohorts, cohort)
	}
	sort.Ints(cohorts)

	result := &CohortMetrics{
		MaxAge:  maxAge,
		Cohorts: make([]CohortRow, 0, len(cohorts)),
	}
	for _, cohort := range cohorts {
		size := cohortSizes[cohort]
		row := CohortRow{
			Cohort:    monthLabel(cohort),
			Size:      size,
			Retention: make([]float64, maxAge+1),
		}
		for age := 0; age <= maxAge; age++ {
			if set, ok := active[cell{cohort: cohort, age: age}]; ok {
				row.Retention[age] = float64(len(set)) / float64(size) * 100
			}
		}
		result.Cohorts = append(result.Cohorts, row)
	}

	return result, nil
}

// monthIndex flattens a calendar month to a comparable integer so month
// arithmetic crosses year boundaries correctly.
func monthIndex(year, month int) int {
	return year*12 + (month - 1)
}

func monthLabel(index int) string {
	return fmt.Sprintf("%04d-%02d", index/12, index%12+1)
}
