package domain

// Segment labels assigned from scored RFM tiers.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentNewCustomers       = "New Customers"
	SegmentAtRisk             = "At Risk"
	SegmentLost               = "Lost"
	SegmentPotentialLoyalists = "Potential Loyalists"
)

// CustomerRFM carries the recency/frequency/monetary aggregate for a
// customer together with its quintile scores and segment label.
type CustomerRFM struct {
	CustomerID string  `json:"customer_id" csv:"CustomerID"`
	Recency    int     `json:"recency" csv:"Recency"`       // days since last purchase
	Frequency  int     `json:"frequency" csv:"Frequency"`   // distinct invoices
	Monetary   float64 `json:"monetary" csv:"Monetary"`     // total revenue
	RScore     int     `json:"r_score" csv:"RScore"`        // 1-5, 5 is most recent
	FScore     int     `json:"f_score" csv:"FScore"`        // 1-5, 5 is most frequent
	MScore     int     `json:"m_score" csv:"MScore"`        // 1-5, 5 is highest spend
	RFMScore   string  `json:"rfm_score" csv:"RFMScore"`    // concatenated "RFM", e.g. "543"
	Segment    string  `json:"segment" csv:"Segment"`
}

// SegmentFor applies the fixed rule table mapping tier scores to a
// segment label. Scores are expected in the 1-5 range.
func SegmentFor(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyalCustomers
	case r >= 4 && f <= 2:
		return SegmentNewCustomers
	case r <= 2 && f >= 3 && m >= 3:
		return SegmentAtRisk
	case r <= 2 && f <= 2:
		return SegmentLost
	default:
		return SegmentPotentialLoyalists
	}
}
