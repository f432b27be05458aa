package ingest

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"retailpulse/pkg/contracts/domain"
)

// Sheet names of the Online Retail II workbook. When neither is present
// the loader falls back to scanning every sheet for a transaction header.
var preferredSheets = []string{"Year 2009-2010", "Year 2010-2011"}

// LoadStats reports what the loader saw while reading raw input.
type LoadStats struct {
	SheetsRead    int
	TotalRows     int
	MalformedRows int
}

// LoadWorkbook reads the raw transaction workbook and extracts all rows
// from its yearly sheets. Malformed rows (unparseable dates or numbers)
// are dropped and counted, never fatal.
func LoadWorkbook(path string, logger *slog.Logger) ([]domain.Transaction, *LoadStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	stats := &LoadStats{}
	var transactions []domain.Transaction

	sheets := sheetsToRead(f)
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("could not find a transaction sheet in %s", path)
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}

		parsed, rowStats := parseSheet(rows, logger)
		logger.Info("parsed workbook sheet",
			slog.String("sheet", name),
			slog.Int("rows", rowStats.TotalRows),
			slog.Int("malformed", rowStats.MalformedRows))

		transactions = append(transactions, parsed...)
		stats.SheetsRead++
		stats.TotalRows += rowStats.TotalRows
		stats.MalformedRows += rowStats.MalformedRows
	}

	logger.Info("workbook load complete",
		slog.String("path", path),
		slog.Int("sheets", stats.SheetsRead),
		slog.Int("transactions", len(transactions)),
		slog.Int("malformed_rows", stats.MalformedRows))

	return transactions, stats, nil
}

// sheetsToRead returns the preferred yearly sheets when present,
// otherwise every sheet whose header row looks like transaction data.
func sheetsToRead(f *excelize.File) []string {
	var sheets []string
	existing := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		existing[name] = true
	}

	for _, name := range preferredSheets {
		if existing[name] {
			sheets = append(sheets, name)
		}
	}
	if len(sheets) > 0 {
		return sheets
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		if _, ok := mapColumns(rows[0]); ok {
			sheets = append(sheets, name)
		}
	}
	return sheets
}

// parseSheet extracts transactions from one sheet. The first row must be
// the header; column positions are mapped by name so reordered exports
// still parse.
func parseSheet(rows [][]string, logger *slog.Logger) ([]domain.Transaction, LoadStats) {
	stats := LoadStats{}
	if len(rows) < 2 {
		return nil, stats
	}

	columns, ok := mapColumns(rows[0])
	if !ok {
		logger.Warn("sheet header does not look like transaction data",
			slog.Any("header", rows[0]))
		return nil, stats
	}

	cell := func(row []string, idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	transactions := make([]domain.Transaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		stats.TotalRows++

		invoice := cell(row, columns.invoice)
		if invoice == "" {
			stats.MalformedRows++
			continue
		}

		quantity, err := strconv.ParseInt(strings.ReplaceAll(cell(row, columns.quantity), ",", ""), 10, 64)
		if err != nil {
			stats.MalformedRows++
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, columns.price), ",", ""), 64)
		if err != nil {
			stats.MalformedRows++
			continue
		}

		date, err := parseDate(cell(row, columns.date))
		if err != nil {
			stats.MalformedRows++
			continue
		}

		transactions = append(transactions, domain.Transaction{
			Invoice:     invoice,
			StockCode:   cell(row, columns.stockCode),
			Description: cell(row, columns.description),
			Quantity:    quantity,
			Price:       price,
			InvoiceDate: date,
			CustomerID:  normalizeCustomerID(cell(row, columns.customer)),
			Country:     cell(row, columns.country),
		})
	}

	return transactions, stats
}

// columnMap holds header positions; -1 means the column is absent.
type columnMap struct {
	invoice     int
	stockCode   int
	description int
	quantity    int
	price       int
	date        int
	customer    int
	country     int
}

// mapColumns maps column positions from the header row. Invoice,
// quantity, price and date are required; the rest default to empty.
func mapColumns(header []string) (columnMap, bool) {
	cm := columnMap{invoice: -1, stockCode: -1, description: -1, quantity: -1,
		price: -1, date: -1, customer: -1, country: -1}

	for i, h := range header {
		switch normalized := strings.ToLower(strings.TrimSpace(h)); {
		case normalized == "invoice" || normalized == "invoiceno":
			cm.invoice = i
		case normalized == "stockcode" || normalized == "stock code":
			cm.stockCode = i
		case normalized == "description":
			cm.description = i
		case normalized == "quantity":
			cm.quantity = i
		case normalized == "price" || normalized == "unitprice" || normalized == "unit price":
			cm.price = i
		case strings.Contains(normalized, "invoicedate") || normalized == "invoice date":
			cm.date = i
		case strings.Contains(normalized, "customer"):
			cm.customer = i
		case normalized == "country":
			cm.country = i
		}
	}

	ok := cm.invoice >= 0 && cm.quantity >= 0 && cm.price >= 0 && cm.date >= 0
	return cm, ok
}

// Date layouts seen in workbook exports. Excelize formats cells with the
// workbook's own number format, so several shapes show up in practice.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/06 15:04",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02-01-2006 15:04",
}

// parseDate parses a cell value as a timestamp, accepting the known
// layouts and the raw Excel serial number form.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	// Excel serial date: days since 1899-12-30, fraction is time of day.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		days := math.Floor(serial)
		frac := serial - days
		return epoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// normalizeCustomerID strips the float artifact some exports carry
// ("17850.0" -> "17850"). Empty input stays empty: missing customer.
func normalizeCustomerID(value string) string {
	return strings.TrimSuffix(value, ".0")
}
