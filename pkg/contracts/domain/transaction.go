package domain

import (
	"strings"
	"time"
)

// CancellationPrefix marks a cancelled invoice in the raw dataset.
const CancellationPrefix = "C"

// Transaction represents a single line item of a retail invoice.
// One invoice spans multiple transactions, one per product.
type Transaction struct {
	Invoice     string    `json:"invoice" csv:"Invoice" validate:"required"`
	StockCode   string    `json:"stock_code" csv:"StockCode"`
	Description string    `json:"description" csv:"Description"`
	Quantity    int64     `json:"quantity" csv:"Quantity" validate:"required,min=1"`
	Price       float64   `json:"price" csv:"Price" validate:"required,gt=0"`
	InvoiceDate time.Time `json:"invoice_date" csv:"InvoiceDate"`
	CustomerID  string    `json:"customer_id" csv:"CustomerID"`
	Country     string    `json:"country" csv:"Country"`
}

// IsCancellation reports whether the invoice carries the cancellation marker.
func (t Transaction) IsCancellation() bool {
	return strings.HasPrefix(t.Invoice, CancellationPrefix)
}

// Revenue returns the line revenue (quantity times unit price).
func (t Transaction) Revenue() float64 {
	return float64(t.Quantity) * t.Price
}

// Year returns the calendar year of the invoice date.
func (t Transaction) Year() int {
	return t.InvoiceDate.Year()
}

// Month returns the calendar month of the invoice date (1-12).
func (t Transaction) Month() int {
	return int(t.InvoiceDate.Month())
}

// YearMonth returns the period key in "2006-01" form.
func (t Transaction) YearMonth() string {
	return t.InvoiceDate.Format("2006-01")
}

// DayOfWeek returns the day of week with Monday as 0 and Sunday as 6,
// matching the processed dataset convention.
func (t Transaction) DayOfWeek() int {
	return (int(t.InvoiceDate.Weekday()) + 6) % 7
}

// Hour returns the hour of day of the invoice timestamp.
func (t Transaction) Hour() int {
	return t.InvoiceDate.Hour()
}

// IsClean reports whether the transaction satisfies the post-cleaning
// invariant: a present customer, positive quantity and price, and no
// cancellation marker.
func (t Transaction) IsClean() bool {
	return t.CustomerID != "" && t.Quantity > 0 && t.Price > 0 && !t.IsCancellation()
}
