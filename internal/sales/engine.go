// Package sales validates and records sale transactions against the catalog.
package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/repo"
	"github.com/bookstore/ledger/internal/validate"
	"go.uber.org/zap"
)

var (
	// ErrCatalogEmpty is returned when there is nothing to sell
	ErrCatalogEmpty = errors.New("no products available")

	// ErrOutOfStock is returned when the product has no stock left
	ErrOutOfStock = errors.New("out of stock")

	// ErrInvalidQuantity is returned when fewer than one unit is requested
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInsufficientStock is matched by *InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCustomerRequired is returned for a blank customer name
	ErrCustomerRequired = errors.New("customer name is required")
)

// InsufficientStockError is returned when more units are requested than
// the product has in stock. The sale is canceled, never clamped.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d available, %d requested", e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) match
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// SaleRequest is a sale as entered by the operator. Discount is kept as
// raw input because an unusable discount degrades to 0% rather than
// failing the sale.
type SaleRequest struct {
	Customer  string
	ProductID int
	Quantity  int
	Discount  string
}

// Receipt describes a recorded sale
type Receipt struct {
	Sale           db.Sale
	Subtotal       float64
	DiscountAmount float64
	Total          float64

	// DiscountWarning is set when the requested discount was ignored
	DiscountWarning error
}

// Engine records sales. It reads and mutates the catalog and the
// transaction log but owns neither.
type Engine struct {
	catalog *repo.CatalogRepository
	ledger  *repo.SalesRepository
	now     func() time.Time
	log     *zap.Logger
}

// NewEngine creates a sale engine over the given catalog and log
func NewEngine(catalog *repo.CatalogRepository, ledger *repo.SalesRepository, log *zap.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		ledger:  ledger,
		now:     time.Now,
		log:     log,
	}
}

// CheckAvailable returns the product if it can be sold at all
func (e *Engine) CheckAvailable(productID int) (db.Product, error) {
	if e.catalog.Len() == 0 {
		return db.Product{}, ErrCatalogEmpty
	}
	product, err := e.catalog.GetProduct(productID)
	if err != nil {
		return db.Product{}, err
	}
	if product.Quantity <= 0 {
		return db.Product{}, ErrOutOfStock
	}
	return product, nil
}

// CheckQuantity reports whether quantity units of product can be sold.
// Requests above the available stock are rejected, never clamped.
func CheckQuantity(product db.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > product.Quantity {
		return &InsufficientStockError{Available: product.Quantity, Requested: quantity}
	}
	return nil
}

// RecordSale validates req against current stock, then decrements the
// stock and appends the sale. Nothing is mutated when an error is returned.
func (e *Engine) RecordSale(req SaleRequest) (Receipt, error) {
	product, err := e.CheckAvailable(req.ProductID)
	if err != nil {
		e.log.Info("Sale rejected", zap.Int("product_id", req.ProductID), zap.Error(err))
		return Receipt{}, err
	}

	customer, err := validate.Text(req.Customer, true)
	if err != nil {
		return Receipt{}, ErrCustomerRequired
	}

	if err := CheckQuantity(product, req.Quantity); err != nil {
		e.log.Info("Sale canceled", zap.Int("product_id", product.ID), zap.Error(err))
		return Receipt{}, err
	}

	discount, discountErr := validate.Discount(req.Discount)
	if discountErr != nil {
		e.log.Warn("Ignoring invalid discount",
			zap.String("input", strings.TrimSpace(req.Discount)),
			zap.Error(discountErr),
		)
	}

	subtotal := float64(req.Quantity) * product.Price
	discountAmount := subtotal * (discount / 100)
	total := db.RoundCents(subtotal - discountAmount)

	sale := db.Sale{
		Customer:     customer,
		Product:      product.Title,
		Author:       product.Author,
		QuantitySold: req.Quantity,
		UnitPrice:    product.Price,
		Discount:     discount,
		Total:        total,
		Date:         e.now().Truncate(time.Second),
	}

	// Validation is complete; the stock decrement and the append below
	// form the commit and have no failure path between them.
	if _, err := e.catalog.ReserveStock(product.ID, req.Quantity); err != nil {
		e.log.Error("Failed to reserve stock", zap.Int("product_id", product.ID), zap.Error(err))
		return Receipt{}, err
	}
	e.ledger.Append(sale)

	e.log.Info("Sale recorded",
		zap.String("customer", sale.Customer),
		zap.Int("product_id", product.ID),
		zap.Int("quantity", sale.QuantitySold),
		zap.Float64("total", sale.Total),
	)

	return Receipt{
		Sale:            sale,
		Subtotal:        subtotal,
		DiscountAmount:  discountAmount,
		Total:           total,
		DiscountWarning: discountErr,
	}, nil
}
