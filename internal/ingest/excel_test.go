package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixtureWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "retail.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeFixtureWorkbook(t, "Year 2010-2011", [][]interface{}{
		{"Invoice", "StockCode", "Description", "Quantity", "InvoiceDate", "Price", "Customer ID", "Country"},
		{"536365", "85123A", "WHITE HANGING HEART T-LIGHT HOLDER", 6, "2010-12-01 08:26:00", 2.55, "17850.0", "United Kingdom"},
		{"C536379", "D", "Discount", -1, "2010-12-01 09:41:00", 27.50, "14527", "United Kingdom"},
	})

	txs, stats, err := LoadWorkbook(path, nil)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, 1, stats.SheetsRead)
	assert.Equal(t, 2, stats.TotalRows)
	assert.Equal(t, 0, stats.MalformedRows)

	assert.Equal(t, "536365", txs[0].Invoice)
	assert.Equal(t, "17850", txs[0].CustomerID, "float artifact is stripped")
	assert.True(t, txs[1].IsCancellation())
}

func TestLoadWorkbookFallbackSheet(t *testing.T) {
	path := writeFixtureWorkbook(t, "Export", [][]interface{}{
		{"InvoiceNo", "StockCode", "Description", "Quantity", "InvoiceDate", "UnitPrice", "CustomerID", "Country"},
		{"536365", "85123A", "HOLDER", 6, "2010-12-01 08:26:00", 2.55, "17850", "United Kingdom"},
	})

	txs, stats, err := LoadWorkbook(path, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 1, stats.SheetsRead)
	assert.Equal(t, 2.55, txs[0].Price)
}

func TestLoadWorkbookCountsMalformedRows(t *testing.T) {
	path := writeFixtureWorkbook(t, "Year 2010-2011", [][]interface{}{
		{"Invoice", "StockCode", "Description", "Quantity", "InvoiceDate", "Price", "Customer ID", "Country"},
		{"536365", "85123A", "HOLDER", "six", "2010-12-01 08:26:00", 2.55, "17850", "United Kingdom"},
		{"", "85123A", "HOLDER", 6, "2010-12-01 08:26:00", 2.55, "17850", "United Kingdom"},
		{"536367", "84879", "ORNAMENT", 32, "2010-12-01 08:34:00", 1.69, "13047", "United Kingdom"},
	})

	txs, stats, err := LoadWorkbook(path, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 2, stats.MalformedRows)
}

func TestLoadWorkbookNoTransactionSheet(t *testing.T) {
	path := writeFixtureWorkbook(t, "Notes", [][]interface{}{
		{"A", "B"},
		{"1", "2"},
	})

	_, _, err := LoadWorkbook(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find a transaction sheet")
}

func TestLoadWorkbookMissingFile(t *testing.T) {
	_, _, err := LoadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), nil)
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		wantY int
		wantM int
		wantD int
		ok    bool
	}{
		{"iso", "2010-12-01 08:26:00", 2010, 12, 1, true},
		{"short us", "12/1/10 8:26", 2010, 12, 1, true},
		{"serial", "40513.352083333331", 2010, 12, 1, true},
		{"empty", "", 0, 0, 0, false},
		{"garbage", "not-a-date", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.value)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantY, got.Year())
			assert.Equal(t, tt.wantM, int(got.Month()))
			assert.Equal(t, tt.wantD, got.Day())
		})
	}
}
