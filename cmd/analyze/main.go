// Command analyze computes every analytics report from the processed
// dataset and writes them as CSVs under data/reports. It is the
// offline, scriptable counterpart of the dashboard API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/ingest"
	"retailpulse/internal/metrics"
	"retailpulse/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "cleaned dataset path (defaults to data/processed/cleaned_transactions.csv)")
	out := flag.String("out", "", "report output directory (defaults to data/reports)")
	topN := flag.Int("top", metrics.DefaultTopProducts, "number of top products to report")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *in != "" {
		paths.CleanedCSV = *in
	}
	if *out != "" {
		paths.ReportsDir = *out
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create data directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !config.FileExists(paths.CleanedCSV) {
		logger.Error("cleaned dataset not found, run preprocess first",
			slog.String("path", paths.CleanedCSV))
		os.Exit(1)
	}

	transactions, err := ingest.LoadCSV(paths.CleanedCSV)
	if err != nil {
		logger.Error("failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset loaded",
		slog.String("path", paths.CleanedCSV),
		slog.Int("rows", len(transactions)))

	writer := exporter.NewCSVWriter(logger)
	reporter := &reporter{
		writer:      writer,
		paths:       paths,
		homeCountry: cfg.Data.HomeCountry,
		topN:        *topN,
	}
	if err := reporter.writeAll(transactions); err != nil {
		logger.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("reports written to %s\n", paths.ReportsDir)
}

type reporter struct {
	writer      *exporter.CSVWriter
	paths       *config.Paths
	homeCountry string
	topN        int
}

func (r *reporter) writeAll(transactions []domain.Transaction) error {
	steps := []struct {
		name string
		run  func([]domain.Transaction) error
	}{
		{"summary.csv", r.summary},
		{"monthly_revenue.csv", r.monthlyRevenue},
		{"yoy_growth.csv", r.yoyGrowth},
		{"customer_segments.csv", r.segments},
		{"countries.csv", r.countries},
		{"cohort_retention.csv", r.cohorts},
		{"time_patterns.csv", r.timePatterns},
		{"top_products.csv", r.topProducts},
	}
	for _, step := range steps {
		if err := step.run(transactions); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (r *reporter) summary(transactions []domain.Transaction) error {
	s, err := metrics.Summary(transactions)
	if err != nil {
		return err
	}
	headers := []string{"Metric", "Value"}
	records := [][]string{
		{"TotalRevenue", f(s.TotalRevenue)},
		{"TotalOrders", strconv.Itoa(s.TotalOrders)},
		{"TotalCustomers", strconv.Itoa(s.TotalCustomers)},
		{"TotalProducts", strconv.Itoa(s.TotalProducts)},
		{"TotalCountries", strconv.Itoa(s.TotalCountries)},
		{"AvgOrderValue", f(s.AvgOrderValue)},
		{"RepeatCustomers", strconv.Itoa(s.RepeatCustomers)},
		{"RepeatRate", f(s.RepeatRate)},
		{"DateStart", s.DateRange.Start},
		{"DateEnd", s.DateRange.End},
	}
	fmt.Printf("summary: revenue %.2f over %d orders from %d customers (%s to %s)\n",
		s.TotalRevenue, s.TotalOrders, s.TotalCustomers, s.DateRange.Start, s.DateRange.End)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("summary.csv"), headers, records)
}

func (r *reporter) monthlyRevenue(transactions []domain.Transaction) error {
	m, err := metrics.MonthlyRevenue(transactions)
	if err != nil {
		return err
	}
	headers := []string{"YearMonth", "Revenue", "Orders", "Customers", "RevenueGrowth", "OrdersGrowth"}
	records := make([][]string, len(m.Monthly))
	for i, p := range m.Monthly {
		records[i] = []string{
			p.YearMonth, f(p.Revenue), strconv.Itoa(p.Orders), strconv.Itoa(p.Customers),
			optF(p.RevenueGrowth), optF(p.OrdersGrowth),
		}
	}
	fmt.Printf("seasonality: best month %s (%.2f), worst %s (%.2f)\n",
		m.BestMonth, m.BestMonthRevenue, m.WorstMonth, m.WorstMonthRevenue)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("monthly_revenue.csv"), headers, records)
}

func (r *reporter) yoyGrowth(transactions []domain.Transaction) error {
	y, err := metrics.YoYGrowth(transactions)
	if err != nil {
		// A single-year dataset has no comparison to make.
		if errors.Is(err, metrics.ErrNoData) {
			fmt.Println("yoy: skipped, needs two years of data")
			return nil
		}
		return err
	}
	headers := []string{"PriorYear", "LatestYear", "PriorRevenue", "LatestRevenue", "GrowthPct", "ComparableMonths"}
	records := [][]string{{
		strconv.Itoa(y.PriorYear), strconv.Itoa(y.LatestYear),
		f(y.PriorRevenue), f(y.LatestRevenue), f(y.GrowthPct), strconv.Itoa(y.ComparableMonths),
	}}
	fmt.Printf("yoy: %d vs %d over %d comparable months: %+.1f%%\n",
		y.LatestYear, y.PriorYear, y.ComparableMonths, y.GrowthPct)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("yoy_growth.csv"), headers, records)
}

func (r *reporter) segments(transactions []domain.Transaction) error {
	customers, err := metrics.ComputeRFM(transactions)
	if err != nil {
		return err
	}
	headers := []string{"Segment", "Customers", "Revenue", "AvgRecency", "AvgMonetary"}
	summaries := metrics.SummarizeSegments(customers)
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.Segment, strconv.Itoa(s.Customers), f(s.Revenue), f(s.AvgRecency), f(s.AvgMonetary),
		}
	}
	fmt.Printf("segments: %d customers across %d segments\n", len(customers), len(summaries))
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("customer_segments.csv"), headers, records)
}

func (r *reporter) countries(transactions []domain.Transaction) error {
	g, err := metrics.Geographic(transactions, r.homeCountry)
	if err != nil {
		return err
	}
	headers := []string{"Country", "Revenue", "Orders", "Customers", "Quantity", "MarketShare"}
	records := make([][]string, len(g.Countries))
	for i, c := range g.Countries {
		records[i] = []string{
			c.Country, f(c.Revenue), strconv.Itoa(c.Orders), strconv.Itoa(c.Customers),
			strconv.FormatInt(c.Quantity, 10), f(c.MarketShare),
		}
	}
	fmt.Printf("geography: %d countries, %s holds %.1f%% of revenue\n",
		g.TotalCountries, g.HomeCountry, g.HomeShare)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("countries.csv"), headers, records)
}

func (r *reporter) cohorts(transactions []domain.Transaction) error {
	c, err := metrics.CohortRetention(transactions)
	if err != nil {
		return err
	}
	headers := []string{"Cohort", "Size"}
	for age := 0; age <= c.MaxAge; age++ {
		headers = append(headers, "Month"+strconv.Itoa(age))
	}
	records := make([][]string, len(c.Cohorts))
	for i, row := range c.Cohorts {
		record := []string{row.Cohort, strconv.Itoa(row.Size)}
		for _, pct := range row.Retention {
			record = append(record, f(pct))
		}
		records[i] = record
	}
	fmt.Printf("cohorts: %d monthly cohorts tracked to age %d\n", len(c.Cohorts), c.MaxAge)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("cohort_retention.csv"), headers, records)
}

func (r *reporter) timePatterns(transactions []domain.Transaction) error {
	t, err := metrics.TimePatterns(transactions)
	if err != nil {
		return err
	}
	headers := []string{"Dimension", "Key", "Label", "Revenue", "Orders"}
	var records [][]string
	for _, d := range t.Days {
		records = append(records, []string{
			"day_of_week", strconv.Itoa(d.DayOfWeek), d.DayName, f(d.Revenue), strconv.Itoa(d.Orders),
		})
	}
	for _, h := range t.Hours {
		records = append(records, []string{
			"hour", strconv.Itoa(h.Hour), strconv.Itoa(h.Hour) + ":00", f(h.Revenue), strconv.Itoa(h.Orders),
		})
	}
	fmt.Printf("time patterns: peak day %s, peak hour %d:00\n", t.PeakDay, t.PeakHour)
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("time_patterns.csv"), headers, records)
}

func (r *reporter) topProducts(transactions []domain.Transaction) error {
	p, err := metrics.TopProducts(transactions, r.topN)
	if err != nil {
		return err
	}
	headers := []string{"Rank", "StockCode", "Description", "Revenue", "Quantity", "Orders", "Customers"}
	records := make([][]string, len(p.ByRevenue))
	for i, s := range p.ByRevenue {
		records[i] = []string{
			strconv.Itoa(i + 1), s.StockCode, s.Description,
			f(s.Revenue), strconv.FormatInt(s.Quantity, 10), strconv.Itoa(s.Orders), strconv.Itoa(s.Customers),
		}
	}
	fmt.Printf("products: %d distinct, top %d reported\n", p.TotalProducts, len(p.ByRevenue))
	return r.writer.WriteSimpleCSV(r.paths.GetReportPath("top_products.csv"), headers, records)
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optF(v *float64) string {
	if v == nil {
		return ""
	}
	return f(*v)
}
