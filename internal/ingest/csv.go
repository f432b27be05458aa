package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// CleanedHeaders is the column layout of the processed dataset. The
// derived columns (Revenue onward) are recomputed on load rather than
// trusted from disk.
var CleanedHeaders = []string{
	"Invoice", "StockCode", "Description", "Quantity", "InvoiceDate",
	"Price", "CustomerID", "Country",
	"Revenue", "Year", "Month", "YearMonth", "DayOfWeek", "Hour",
}

// CleanedDateLayout is the timestamp format of the processed dataset.
const CleanedDateLayout = "2006-01-02 15:04:05"

// LoadCSV reads a cleaned or sample transaction CSV. The file must carry
// the CleanedHeaders prefix (derived columns are optional, which lets the
// same loader read hand-built fixtures).
func LoadCSV(path string) ([]domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range CleanedHeaders[:8] {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset %s is missing column %s", path, required)
		}
	}

	transactions := make([]domain.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		tx, err := parseCSVRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func parseCSVRow(row []string, idx map[string]int) (domain.Transaction, error) {
	field := func(name string) string {
		if i, ok := idx[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	quantity, err := strconv.ParseInt(field("Quantity"), 10, 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid quantity %q", field("Quantity"))
	}

	price, err := strconv.ParseFloat(field("Price"), 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid price %q", field("Price"))
	}

	date, err := time.Parse(CleanedDateLayout, field("InvoiceDate"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid invoice date %q", field("InvoiceDate"))
	}

	return domain.Transaction{
		Invoice:     field("Invoice"),
		StockCode:   field("StockCode"),
		Description: field("Description"),
		Quantity:    quantity,
		Price:       price,
		InvoiceDate: date,
		CustomerID:  field("CustomerID"),
		Country:     field("Country"),
	}, nil
}

// CSVRecord renders a transaction into the CleanedHeaders column layout.
// Formatting is deterministic so repeated runs over the same input are
// byte-identical.
func CSVRecord(t domain.Transaction) []string {
	return []string{
		t.Invoice,
		t.StockCode,
		t.Description,
		strconv.FormatInt(t.Quantity, 10),
		t.InvoiceDate.Format(CleanedDateLayout),
		strconv.FormatFloat(t.Price, 'f', -1, 64),
		t.CustomerID,
		t.Country,
		strconv.FormatFloat(t.Revenue(), 'f', -1, 64),
		strconv.Itoa(t.Year()),
		strconv.Itoa(t.Month()),
		t.YearMonth(),
		strconv.Itoa(t.DayOfWeek()),
		strconv.Itoa(t.Hour()),
	}
}
