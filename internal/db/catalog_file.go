package db

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// RowError is a catalog row that was left out on load
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// CatalogSnapshot is the catalog as read from disk
type CatalogSnapshot struct {
	Products []Product
	NextID   int
	Skipped  int
	Rejected []RowError
	Found    bool
}

// LoadCatalog reads the catalog file. Invalid rows are skipped with a
// warning; a missing file yields an empty snapshot.
func (f *Files) LoadCatalog() (CatalogSnapshot, error) {
	snapshot := CatalogSnapshot{NextID: 1}

	skip := func(line int, err error) {
		snapshot.Skipped++
		snapshot.Rejected = append(snapshot.Rejected, RowError{Line: line, Err: err})
		f.log.Warn("Skipping invalid catalog row",
			zap.String("file", f.catalogPath),
			zap.Int("line", line),
			zap.Error(err),
		)
	}

	records, found, err := readRecords(f.catalogPath, skip)
	if err != nil {
		f.log.Error("Failed to load catalog", zap.String("file", f.catalogPath), zap.Error(err))
		return snapshot, err
	}
	snapshot.Found = found

	seen := make(map[int]bool, len(records))
	maxID := 0
	for _, rec := range records {
		product, err := parseProduct(rec)
		if err != nil {
			skip(rec.line, err)
			continue
		}
		if seen[product.ID] {
			skip(rec.line, fmt.Errorf("duplicate id %d", product.ID))
			continue
		}
		seen[product.ID] = true
		if product.ID > maxID {
			maxID = product.ID
		}
		snapshot.Products = append(snapshot.Products, product)
	}
	snapshot.NextID = maxID + 1

	f.log.Info("Catalog loaded",
		zap.String("file", f.catalogPath),
		zap.Int("products", len(snapshot.Products)),
		zap.Int("skipped", snapshot.Skipped),
	)
	return snapshot, nil
}

// SaveCatalog overwrites the catalog file. An empty catalog is never
// written so a populated file cannot be truncated by accident.
func (f *Files) SaveCatalog(products []Product) error {
	if len(products) == 0 {
		return ErrNothingToSave
	}

	rows := make([]catalogRow, len(products))
	for i, p := range products {
		rows[i] = toCatalogRow(p)
	}

	err := writeFileAtomic(f.catalogPath, func(w io.Writer) error {
		return gocsv.Marshal(rows, w)
	})
	if err != nil {
		f.log.Error("Failed to save catalog", zap.String("file", f.catalogPath), zap.Error(err))
		return err
	}

	f.log.Info("Catalog saved", zap.String("file", f.catalogPath), zap.Int("products", len(products)))
	return nil
}

func parseProduct(rec record) (Product, error) {
	var p Product

	raw, err := rec.get("id")
	if err != nil {
		return p, err
	}
	if p.ID, err = parseInt(raw); err != nil {
		return p, errors.Wrap(err, "id")
	}
	if p.ID < 1 {
		return p, fmt.Errorf("id must be positive, got %d", p.ID)
	}

	if p.Title, err = requiredText(rec, "title"); err != nil {
		return p, err
	}
	if p.Author, err = requiredText(rec, "author"); err != nil {
		return p, err
	}
	if p.Category, err = requiredText(rec, "category"); err != nil {
		return p, err
	}

	if raw, err = rec.get("price"); err != nil {
		return p, err
	}
	if p.Price, err = parseFloat(raw); err != nil {
		return p, errors.Wrap(err, "price")
	}
	if p.Price < 0 {
		return p, fmt.Errorf("price must not be negative, got %v", p.Price)
	}

	if raw, err = rec.get("quantity"); err != nil {
		return p, err
	}
	if p.Quantity, err = parseInt(raw); err != nil {
		return p, errors.Wrap(err, "quantity")
	}
	if p.Quantity < 0 {
		return p, fmt.Errorf("quantity must not be negative, got %d", p.Quantity)
	}

	return p, nil
}

func requiredText(rec record, column string) (string, error) {
	v, err := rec.get(column)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is empty", column)
	}
	return v, nil
}

// parseInt accepts plain base-10 integers only.
func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func parseFloat(raw string) (float64, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
