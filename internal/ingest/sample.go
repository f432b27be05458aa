package ingest

import (
	"math/rand"
	"sort"
	"strconv"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// sampleProduct is one catalog entry used by the synthetic generator.
type sampleProduct struct {
	stockCode   string
	description string
	price       float64
}

// Catalog of realistic gift items matching the shape of the real dataset.
var sampleProducts = []sampleProduct{
	{"85123A", "WHITE HANGING HEART T-LIGHT HOLDER", 2.55},
	{"71053", "WHITE METAL LANTERN", 3.39},
	{"84406B", "CREAM CUPID HEARTS COAT HANGER", 2.75},
	{"84029G", "KNITTED UNION FLAG HOT WATER BOTTLE", 3.39},
	{"22752", "SET 7 BABUSHKA NESTING BOXES", 7.65},
	{"21730", "GLASS STAR FROSTED T-LIGHT HOLDER", 4.25},
	{"22633", "HAND WARMER UNION JACK", 1.85},
	{"84879", "ASSORTED COLOUR BIRD ORNAMENT", 1.69},
	{"22749", "FELTCRAFT PRINCESS CHARLOTTE DOLL", 3.75},
	{"22310", "PANTRY MAGNETIC SHOPPING LIST", 1.95},
	{"22623", "BOX OF VINTAGE JIGSAW BLOCKS", 4.95},
	{"21754", "HOME BUILDING BLOCK WORD", 5.95},
	{"21777", "RECIPE BOX WITH METAL HEART", 7.95},
	{"22469", "HEART OF WICKER SMALL", 1.65},
	{"21212", "PACK OF 72 RETROSPOT CAKE CASES", 0.55},
	{"22423", "REGENCY CAKESTAND 3 TIER", 12.75},
	{"47566", "PARTY BUNTING", 4.95},
	{"23300", "GARDENERS KNEELING PAD CUP OF TEA", 2.10},
	{"22726", "ALARM CLOCK BAKELIKE GREEN", 3.75},
	{"20725", "LUNCH BAG RED RETROSPOT", 1.65},
	{"22197", "POPCORN HOLDER", 0.85},
	{"85099B", "JUMBO BAG RED RETROSPOT", 1.95},
	{"23084", "RABBIT NIGHT LIGHT", 1.85},
	{"23166", "MEDIUM CERAMIC TOP STORAGE JAR", 1.25},
}

// sampleCountry pairs a country with its sampling weight. UK dominant,
// matching the real distribution.
type sampleCountry struct {
	name   string
	weight float64
}

var sampleCountries = []sampleCountry{
	{"United Kingdom", 0.82},
	{"Germany", 0.04},
	{"France", 0.03},
	{"EIRE", 0.02},
	{"Netherlands", 0.015},
	{"Belgium", 0.015},
	{"Spain", 0.01},
	{"Switzerland", 0.008},
	{"Portugal", 0.006},
	{"Australia", 0.005},
	{"Italy", 0.005},
	{"Cyprus", 0.005},
	{"Norway", 0.004},
	{"Sweden", 0.004},
	{"Japan", 0.003},
	{"Finland", 0.003},
	{"Denmark", 0.003},
	{"Channel Islands", 0.002},
	{"Poland", 0.002},
}

// Seasonal month weights: holiday shopping pushes Nov/Dec up.
var sampleMonthWeights = []float64{0.06, 0.06, 0.07, 0.07, 0.08, 0.08, 0.08, 0.08, 0.09, 0.09, 0.12, 0.12}

// SampleConfig controls the synthetic sample generator.
type SampleConfig struct {
	Transactions int
	Customers    int
	Seed         int64
	StartYear    int
	EndYear      int
}

// DefaultSampleConfig matches the bundled sample dataset.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Transactions: 10000,
		Customers:    500,
		Seed:         42,
		StartYear:    2010,
		EndYear:      2011,
	}
}

// GenerateSample produces a deterministic synthetic transaction set that
// already satisfies the post-cleaning invariant. The same seed always
// yields the same dataset.
func GenerateSample(cfg SampleConfig) []domain.Transaction {
	if cfg.Transactions <= 0 {
		cfg = DefaultSampleConfig()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	customerWeights := make([]float64, cfg.Customers)
	var weightSum float64
	for i := range customerWeights {
		// Heavy-tailed weights: a few frequent buyers, many one-timers.
		w := rng.ExpFloat64()*rng.ExpFloat64() + 0.1
		customerWeights[i] = w
		weightSum += w
	}

	invoiceNum := 536365
	itemsPerInvoice := 5
	nInvoices := cfg.Transactions / itemsPerInvoice

	transactions := make([]domain.Transaction, 0, cfg.Transactions)
	for inv := 0; inv < nInvoices; inv++ {
		invoice := strconv.Itoa(invoiceNum)
		invoiceNum++

		date := sampleInvoiceDate(rng, cfg.StartYear, cfg.EndYear)
		customer := strconv.Itoa(12346 + weightedIndex(rng, customerWeights, weightSum))
		country := sampleCountryName(rng)

		nItems := 1 + rng.Intn(8)
		for item := 0; item < nItems; item++ {
			product := sampleProducts[rng.Intn(len(sampleProducts))]
			quantity := int64(1 + rng.Intn(24))
			// Small price variation around the catalog price.
			price := product.price * (1 + (rng.Float64()-0.5)/5)
			price = float64(int(price*100+0.5)) / 100
			if price <= 0 {
				price = 0.01
			}

			transactions = append(transactions, domain.Transaction{
				Invoice:     invoice,
				StockCode:   product.stockCode,
				Description: product.description,
				Quantity:    quantity,
				Price:       price,
				InvoiceDate: date,
				CustomerID:  customer,
				Country:     country,
			})
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].InvoiceDate.Before(transactions[j].InvoiceDate)
	})

	return transactions
}

func sampleInvoiceDate(rng *rand.Rand, startYear, endYear int) time.Time {
	month := 1 + weightedIndex(rng, sampleMonthWeights, 1.0)
	year := startYear
	if endYear > startYear {
		year += rng.Intn(endYear - startYear + 1)
	}
	day := 1 + rng.Intn(28)
	// Business hours weighted towards late morning.
	hour := 7 + rng.Intn(12)
	minute := rng.Intn(60)

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func sampleCountryName(rng *rand.Rand) string {
	var total float64
	for _, c := range sampleCountries {
		total += c.weight
	}
	target := rng.Float64() * total
	for _, c := range sampleCountries {
		target -= c.weight
		if target <= 0 {
			return c.name
		}
	}
	return sampleCountries[0].name
}

// weightedIndex draws an index proportionally to the given weights.
func weightedIndex(rng *rand.Rand, weights []float64, sum float64) int {
	if sum <= 0 {
		for _, w := range weights {
			sum += w
		}
	}
	target := rng.Float64() * sum
	for i, w := range weights {
		target -= w
		if target <= 0 {
			return i
		}
	}
	return len(weights) - 1
}
