package db

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SalesSnapshot is the transaction log as read from disk
type SalesSnapshot struct {
	Sales   []Sale
	Skipped int
	Found   bool
}

// LoadSales reads the transaction file. Unlike LoadCatalog, rows that fail
// to parse are dropped without a warning. A date that does not parse does
// not drop the row; its text is kept in Sale.DateText.
func (f *Files) LoadSales() (SalesSnapshot, error) {
	var snapshot SalesSnapshot

	skip := func(line int, err error) {
		snapshot.Skipped++
		f.log.Debug("Dropping unreadable sales row", zap.Int("line", line), zap.Error(err))
	}

	records, found, err := readRecords(f.salesPath, skip)
	if err != nil {
		f.log.Error("Failed to load sales", zap.String("file", f.salesPath), zap.Error(err))
		return snapshot, err
	}
	snapshot.Found = found

	for _, rec := range records {
		sale, err := parseSale(rec)
		if err != nil {
			skip(rec.line, err)
			continue
		}
		snapshot.Sales = append(snapshot.Sales, sale)
	}

	f.log.Info("Sales loaded",
		zap.String("file", f.salesPath),
		zap.Int("records", len(snapshot.Sales)),
		zap.Int("skipped", snapshot.Skipped),
	)
	return snapshot, nil
}

// SaveSales overwrites the transaction file. An empty log is never written.
func (f *Files) SaveSales(sales []Sale) error {
	if len(sales) == 0 {
		return ErrNothingToSave
	}

	rows := make([]saleRow, len(sales))
	for i, s := range sales {
		rows[i] = toSaleRow(s)
	}

	err := writeFileAtomic(f.salesPath, func(w io.Writer) error {
		return gocsv.Marshal(rows, w)
	})
	if err != nil {
		f.log.Error("Failed to save sales", zap.String("file", f.salesPath), zap.Error(err))
		return err
	}

	f.log.Info("Sales saved", zap.String("file", f.salesPath), zap.Int("records", len(sales)))
	return nil
}

func parseSale(rec record) (Sale, error) {
	var s Sale
	var raw string
	var err error

	if s.Customer, err = rec.get("customer"); err != nil {
		return s, err
	}
	if s.Product, err = rec.get("product"); err != nil {
		return s, err
	}
	if s.Author, err = rec.get("author"); err != nil {
		return s, err
	}

	if raw, err = rec.get("quantity_sold"); err != nil {
		return s, err
	}
	if s.QuantitySold, err = parseInt(raw); err != nil {
		return s, errors.Wrap(err, "quantity_sold")
	}
	if s.QuantitySold < 1 {
		return s, fmt.Errorf("quantity_sold must be positive, got %d", s.QuantitySold)
	}

	if raw, err = rec.get("unit_price"); err != nil {
		return s, err
	}
	if s.UnitPrice, err = parseFloat(raw); err != nil {
		return s, errors.Wrap(err, "unit_price")
	}

	if raw, err = rec.get("discount"); err != nil {
		return s, err
	}
	if s.Discount, err = parseFloat(raw); err != nil {
		return s, errors.Wrap(err, "discount")
	}
	if s.Discount < 0 || s.Discount > 100 {
		return s, fmt.Errorf("discount out of range: %v", s.Discount)
	}

	if raw, err = rec.get("total"); err != nil {
		return s, err
	}
	if s.Total, err = parseFloat(raw); err != nil {
		return s, errors.Wrap(err, "total")
	}

	if raw, err = rec.get("date"); err != nil {
		return s, err
	}
	if s.Date, err = dateparse.ParseIn(strings.TrimSpace(raw), time.Local); err != nil {
		s.Date = time.Time{}
		s.DateText = raw
	}

	return s, nil
}
