package db

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the timestamp format used in the transaction file
const DateLayout = "2006-01-02 15:04:05"

// Product represents a product in the catalog
type Product struct {
	ID       int
	Title    string
	Author   string
	Category string
	Price    float64
	Quantity int
}

// Sale represents a completed sale. Product, Author and UnitPrice are copied
// from the catalog when the sale is recorded and never follow later edits.
type Sale struct {
	Customer     string
	Product      string
	Author       string
	QuantitySold int
	UnitPrice    float64
	Discount     float64 // percentage, 0-100
	Total        float64
	Date         time.Time

	// DateText is the date column as found on disk when it did not parse.
	// Date is zero in that case and the text is written back unchanged.
	DateText string
}

// Gross returns the sale value before discount
func (s Sale) Gross() float64 {
	return float64(s.QuantitySold) * s.UnitPrice
}

// DateString formats Date for display and storage
func (s Sale) DateString() string {
	if s.Date.IsZero() {
		return s.DateText
	}
	return s.Date.Local().Format(DateLayout)
}

// RoundCents rounds v to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Money is an amount written with exactly two decimals.
type Money float64

// MarshalCSV implements gocsv.TypeMarshaller
func (m Money) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(m), 'f', 2, 64), nil
}

// Percent is written in its shortest decimal form.
type Percent float64

// MarshalCSV implements gocsv.TypeMarshaller
func (p Percent) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(p), 'f', -1, 64), nil
}

// catalogRow is the on-disk shape of a Product. Field order is column order.
type catalogRow struct {
	ID       int    `csv:"id"`
	Title    string `csv:"title"`
	Author   string `csv:"author"`
	Category string `csv:"category"`
	Price    Money  `csv:"price"`
	Quantity int    `csv:"quantity"`
}

// saleRow is the on-disk shape of a Sale. Field order is column order.
type saleRow struct {
	Customer     string  `csv:"customer"`
	Product      string  `csv:"product"`
	Author       string  `csv:"author"`
	QuantitySold int     `csv:"quantity_sold"`
	UnitPrice    Money   `csv:"unit_price"`
	Discount     Percent `csv:"discount"`
	Total        Money   `csv:"total"`
	Date         string  `csv:"date"`
}

func toCatalogRow(p Product) catalogRow {
	return catalogRow{
		ID:       p.ID,
		Title:    p.Title,
		Author:   p.Author,
		Category: p.Category,
		Price:    Money(p.Price),
		Quantity: p.Quantity,
	}
}

func toSaleRow(s Sale) saleRow {
	return saleRow{
		Customer:     s.Customer,
		Product:      s.Product,
		Author:       s.Author,
		QuantitySold: s.QuantitySold,
		UnitPrice:    Money(s.UnitPrice),
		Discount:     Percent(s.Discount),
		Total:        Money(s.Total),
		Date:         s.DateString(),
	}
}
