package pipeline

import (
	"strconv"

	"retailpulse/pkg/contracts/domain"
)

// RFMHeaders is the column layout of customer_rfm.csv.
var RFMHeaders = []string{
	"CustomerID", "Recency", "Frequency", "Monetary",
	"RScore", "FScore", "MScore", "RFMScore", "Segment",
}

// rfmRecords renders the scored customers deterministically.
func rfmRecords(customers []domain.CustomerRFM) [][]string {
	records := make([][]string, len(customers))
	for i, c := range customers {
		records[i] = []string{
			c.CustomerID,
			strconv.Itoa(c.Recency),
			strconv.Itoa(c.Frequency),
			strconv.FormatFloat(c.Monetary, 'f', -1, 64),
			strconv.Itoa(c.RScore),
			strconv.Itoa(c.FScore),
			strconv.Itoa(c.MScore),
			c.RFMScore,
			c.Segment,
		}
	}
	return records
}
